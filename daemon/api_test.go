package daemon

import (
	"encoding/json"
	"testing"

	"github.com/danielgtaylor/huma/v2/humatest"

	"timestore/db"
	"timestore/db/parse"
	"timestore/db/repr"
)

func newTestAPI(t *testing.T) humatest.TestAPI {
	root := t.TempDir()
	writer := db.NewTimelineWriter(root, parse.NewEntityCodec())
	wcx := &db.WriterContext{
		ClusterID: "cluster_1",
		UserID:    "user_1",
		FlowName:  "flow_1",
		FlowRunID: "1002345678919",
		AppID:     "app_1",
	}
	entities := []*repr.Entity{
		{
			Identifier:  repr.Identifier{Type: "app", ID: "app_a"},
			CreatedTime: 1425016501000,
			Configs:     map[string]string{"tier": "prod"},
		},
		{
			Identifier:  repr.Identifier{Type: "app", ID: "app_b"},
			CreatedTime: 1425016502000,
		},
	}
	for _, e := range entities {
		if err := writer.WriteEntity(wcx, e); err != nil {
			t.Fatalf("WriteEntity failed: %q", err)
		}
	}
	if err := writer.WriteFlowMapping(wcx); err != nil {
		t.Fatalf("WriteFlowMapping failed: %q", err)
	}

	_, api := humatest.New(t)
	registerAPI(api, db.NewTimelineReader(root, parse.NewEntityCodec()))
	return api
}

func TestGetEntityEndpoint(t *testing.T) {
	api := newTestAPI(t)

	resp := api.Get("/timeline/clusters/cluster_1/apps/app_1/entities/app/app_a" +
		"?userid=user_1&flowname=flow_1&flowrunid=1002345678919&fields=ALL")
	if resp.Code != 200 {
		t.Fatalf("Wrong status: %d %s", resp.Code, resp.Body.String())
	}
	var entity repr.Entity
	if err := json.Unmarshal(resp.Body.Bytes(), &entity); err != nil {
		t.Fatalf("Bad body: %q", err)
	}
	if entity.ID != "app_a" || entity.Configs["tier"] != "prod" {
		t.Fatalf("Wrong entity: %+v", entity)
	}

	// The flow keys can be left out when the flow-mapping index covers the app.
	resp = api.Get("/timeline/clusters/cluster_1/apps/app_1/entities/app/app_a")
	if resp.Code != 200 {
		t.Fatalf("Index-resolved fetch failed: %d %s", resp.Code, resp.Body.String())
	}

	resp = api.Get("/timeline/clusters/cluster_1/apps/app_1/entities/app/no_such" +
		"?userid=user_1&flowname=flow_1&flowrunid=1002345678919")
	if resp.Code != 404 {
		t.Fatalf("Missing entity should be 404: %d", resp.Code)
	}

	resp = api.Get("/timeline/clusters/cluster_1/apps/app_1/entities/app/app_a?fields=BOGUS")
	if resp.Code != 400 {
		t.Fatalf("Bad field group should be 400: %d", resp.Code)
	}
}

func TestGetEntitiesEndpoint(t *testing.T) {
	api := newTestAPI(t)

	resp := api.Get("/timeline/clusters/cluster_1/apps/app_1/entities/app" +
		"?userid=user_1&flowname=flow_1&flowrunid=1002345678919")
	if resp.Code != 200 {
		t.Fatalf("Wrong status: %d %s", resp.Code, resp.Body.String())
	}
	var entities []*repr.Entity
	if err := json.Unmarshal(resp.Body.Bytes(), &entities); err != nil {
		t.Fatalf("Bad body: %q", err)
	}
	if len(entities) != 2 || entities[0].ID != "app_b" || entities[1].ID != "app_a" {
		t.Fatalf("Wrong result: %+v", entities)
	}

	resp = api.Get("/timeline/clusters/cluster_1/apps/app_1/entities/app" +
		"?userid=user_1&flowname=flow_1&flowrunid=1002345678919&limit=1")
	if resp.Code != 200 {
		t.Fatalf("Wrong status: %d", resp.Code)
	}
	if err := json.Unmarshal(resp.Body.Bytes(), &entities); err != nil {
		t.Fatalf("Bad body: %q", err)
	}
	if len(entities) != 1 || entities[0].ID != "app_b" {
		t.Fatalf("Limit must keep the newest entity: %+v", entities)
	}

	resp = api.Get("/timeline/clusters/cluster_1/apps/app_1/entities/app" +
		"?userid=user_1&flowname=flow_1&flowrunid=1002345678919&conffilters=tier:prod&fields=CONFIGS")
	if resp.Code != 200 {
		t.Fatalf("Wrong status: %d", resp.Code)
	}
	if err := json.Unmarshal(resp.Body.Bytes(), &entities); err != nil {
		t.Fatalf("Bad body: %q", err)
	}
	if len(entities) != 1 || entities[0].ID != "app_a" {
		t.Fatalf("Config filter wrong: %+v", entities)
	}

	resp = api.Get("/timeline/clusters/cluster_1/apps/app_1/entities/app?relatesto=nocolon")
	if resp.Code != 400 {
		t.Fatalf("Bad filter expression should be 400: %d", resp.Code)
	}
}
