// REST operations.  These are thin: parse the projection and filter expressions, build the
// reader context, delegate to the provider, map the error taxonomy onto status codes.

package daemon

import (
	"context"
	"errors"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"timestore/db"
	"timestore/db/errs"
	"timestore/db/repr"
)

type getEntityInput struct {
	Cluster    string `path:"cluster"`
	App        string `path:"app"`
	EntityType string `path:"entitytype"`
	EntityID   string `path:"entityid"`
	UserID     string `query:"userid"`
	FlowName   string `query:"flowname"`
	FlowRunID  string `query:"flowrunid"`
	Fields     string `query:"fields" doc:"Comma-separated field groups, eg CONFIGS,EVENTS or ALL"`
}

type getEntityOutput struct {
	Body *repr.Entity
}

type getEntitiesInput struct {
	Cluster          string `path:"cluster"`
	App              string `path:"app"`
	EntityType       string `path:"entitytype"`
	UserID           string `query:"userid"`
	FlowName         string `query:"flowname"`
	FlowRunID        string `query:"flowrunid"`
	Fields           string `query:"fields" doc:"Comma-separated field groups, eg CONFIGS,EVENTS or ALL"`
	Limit            int64  `query:"limit" doc:"Maximum number of entities returned, default 100"`
	CreatedTimeStart int64  `query:"createdtimestart" doc:"Inclusive lower bound on createdtime (epoch millis)"`
	CreatedTimeEnd   int64  `query:"createdtimeend" doc:"Inclusive upper bound on createdtime (epoch millis)"`
	RelatesTo        string `query:"relatesto" doc:"Relation filter, type:id1:id2,type2:id3"`
	IsRelatedTo      string `query:"isrelatedto" doc:"Reverse-relation filter, type:id1:id2,type2:id3"`
	InfoFilters      string `query:"infofilters" doc:"Info filter, key:value,key2:value2"`
	ConfFilters      string `query:"conffilters" doc:"Config filter, key:value,key2:value2"`
	MetricFilters    string `query:"metricfilters" doc:"Comma-separated metric ids that must be present"`
	EventFilters     string `query:"eventfilters" doc:"Comma-separated event ids that must be present"`
}

type getEntitiesOutput struct {
	Body []*repr.Entity
}

func registerAPI(api huma.API, provider db.Provider) {
	huma.Register(api, huma.Operation{
		OperationID: "get-timeline-entity",
		Method:      http.MethodGet,
		Path:        "/timeline/clusters/{cluster}/apps/{app}/entities/{entitytype}/{entityid}",
		Summary:     "Fetch one timeline entity",
	}, func(ctx context.Context, input *getEntityInput) (*getEntityOutput, error) {
		fields, err := db.ParseFields(input.Fields)
		if err != nil {
			return nil, huma.Error400BadRequest(err.Error())
		}
		entity, err := provider.GetEntity(&db.ReaderContext{
			ClusterID:  input.Cluster,
			UserID:     input.UserID,
			FlowName:   input.FlowName,
			FlowRunID:  input.FlowRunID,
			AppID:      input.App,
			EntityType: input.EntityType,
			EntityID:   input.EntityID,
		}, fields)
		if err != nil {
			if errors.Is(err, errs.ErrNotFound) {
				return nil, huma.Error404NotFound("No such entity")
			}
			return nil, huma.Error500InternalServerError(err.Error())
		}
		return &getEntityOutput{Body: entity}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "get-timeline-entities",
		Method:      http.MethodGet,
		Path:        "/timeline/clusters/{cluster}/apps/{app}/entities/{entitytype}",
		Summary:     "Query timeline entities of one type",
	}, func(ctx context.Context, input *getEntitiesInput) (*getEntitiesOutput, error) {
		fields, err := db.ParseFields(input.Fields)
		if err != nil {
			return nil, huma.Error400BadRequest(err.Error())
		}
		filters := db.EntityFilters{
			Limit:            input.Limit,
			CreatedTimeBegin: input.CreatedTimeStart,
			CreatedTimeEnd:   input.CreatedTimeEnd,
			MetricFilters:    db.ParseIDSetExpr(input.MetricFilters),
			EventFilters:     db.ParseIDSetExpr(input.EventFilters),
		}
		var e1, e2, e3, e4 error
		filters.RelatesTo, e1 = db.ParseRelationFilterExpr(input.RelatesTo)
		filters.IsRelatedTo, e2 = db.ParseRelationFilterExpr(input.IsRelatedTo)
		filters.InfoFilters, e3 = db.ParseInfoFilterExpr(input.InfoFilters)
		filters.ConfigFilters, e4 = db.ParseConfigFilterExpr(input.ConfFilters)
		if err := errors.Join(e1, e2, e3, e4); err != nil {
			return nil, huma.Error400BadRequest(err.Error())
		}
		entities, err := provider.GetEntities(&db.ReaderContext{
			ClusterID:  input.Cluster,
			UserID:     input.UserID,
			FlowName:   input.FlowName,
			FlowRunID:  input.FlowRunID,
			AppID:      input.App,
			EntityType: input.EntityType,
		}, &filters, fields)
		if err != nil {
			return nil, huma.Error500InternalServerError(err.Error())
		}
		return &getEntitiesOutput{Body: entities}, nil
	})
}
