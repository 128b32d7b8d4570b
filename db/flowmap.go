// Flow-run path resolution.
//
// Entities are filed under cluster/user/flow/flowrun/app.  Callers that know the flow routing keys
// get the path composed directly; callers that only know the application fall back to a scan of
// the per-cluster flow-mapping index, a small CSV file with APP,USER,FLOW,FLOWRUN rows maintained
// by the writer.  Resolution is a single deterministic pass over that file; failure is surfaced,
// never retried or masked.

package db

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"timestore/db/errs"
	"timestore/db/filesys"
	"timestore/db/parse"
)

func resolveFlowRunPath(root string, cx *ReaderContext) (string, error) {
	if cx.UserID != "" && cx.FlowName != "" && cx.FlowRunID != "" {
		return filesys.MakeFlowRunPath(cx.UserID, cx.FlowName, cx.FlowRunID), nil
	}
	if cx.ClusterID == "" || cx.AppID == "" {
		return "", errs.ErrNoFlowMapping
	}

	mappingFile := filesys.MakeFlowMappingFilePath(root, cx.ClusterID)
	input, err := os.Open(mappingFile)
	if err != nil {
		return "", fmt.Errorf("%w: %v", errs.ErrNoFlowMapping, err)
	}
	defer input.Close()

	// Rows are scanned in file order and the first structurally valid match wins.  Rows with
	// fewer than four fields are skipped, and a row with a blank APP field matches any
	// application.  The header row falls out naturally: its APP field is the literal "APP",
	// which never equals a real application id.
	rows := parse.NewCsvRowReader(input)
	for {
		row, err := rows.Next()
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return "", fmt.Errorf("%w: %v", errs.ErrNoFlowMapping, err)
		}
		if len(row) < 4 {
			continue
		}
		if appID := strings.TrimSpace(row[0]); appID != "" && appID != cx.AppID {
			continue
		}
		return filesys.MakeFlowRunPath(
			strings.TrimSpace(row[1]),
			strings.TrimSpace(row[2]),
			strings.TrimSpace(row[3]),
		), nil
	}
	return "", fmt.Errorf("%w: no mapping for app %s in cluster %s",
		errs.ErrNoFlowMapping, cx.AppID, cx.ClusterID)
}
