// TimelineWriter - the append-only write path.
//
// The writer produces exactly the layout the reader consumes: one history file per entity, one
// JSON record per line, plus the per-cluster flow-mapping index.  Every append is a single
// write of record-plus-newline so that a concurrent reader sees either the whole record or none
// of it (the reader additionally skips blank lines).  There is no buffering and no state between
// calls; a TimelineWriter is safe for concurrent use as long as the underlying filesystem makes
// O_APPEND writes atomic, which local filesystems do for writes of this size.

package db

import (
	"bufio"
	"fmt"
	"os"

	"timestore/db/errs"
	"timestore/db/filesys"
	"timestore/db/parse"
	"timestore/db/repr"
)

const (
	dirPermissions  = 0755
	filePermissions = 0644
	newline         = 10
)

const flowMappingHeader = "APP,USER,FLOW,FLOWRUN"

// A WriterContext carries the routing keys under which records are filed.  All fields are
// required; the writer never consults the flow-mapping index.
type WriterContext struct {
	ClusterID string
	UserID    string
	FlowName  string
	FlowRunID string
	AppID     string
}

type TimelineWriter struct {
	root  string
	codec *parse.EntityCodec
}

func NewTimelineWriter(root string, codec *parse.EntityCodec) *TimelineWriter {
	return &TimelineWriter{root: root, codec: codec}
}

// WriteEntity appends one record for e under the context's flow path, creating directories as
// needed.
func (tw *TimelineWriter) WriteEntity(cx *WriterContext, e *repr.Entity) error {
	if e.Type == "" || e.ID == "" {
		return fmt.Errorf("%w: entity without type or id", errs.ErrBadRecord)
	}
	flowRunPath := filesys.MakeFlowRunPath(cx.UserID, cx.FlowName, cx.FlowRunID)
	dir := filesys.MakeEntityTypeDirPath(tw.root, cx.ClusterID, flowRunPath, cx.AppID, e.Type)
	if err := os.MkdirAll(dir, dirPermissions); err != nil {
		return err
	}
	payload, err := tw.codec.EncodeEntity(e)
	if err != nil {
		return err
	}
	filename := filesys.MakeEntityFilePath(
		tw.root, cx.ClusterID, flowRunPath, cx.AppID, e.Type, e.ID)
	return appendRecord(filename, payload)
}

// WriteFlowMapping appends the context's APP,USER,FLOW,FLOWRUN row to the cluster's index,
// creating the file (with its header) on first use.  Rows are never deduplicated; the reader
// takes the first match in file order.
func (tw *TimelineWriter) WriteFlowMapping(cx *WriterContext) error {
	filename := filesys.MakeFlowMappingFilePath(tw.root, cx.ClusterID)
	if err := os.MkdirAll(filesys.MakeClusterDirPath(tw.root, cx.ClusterID), dirPermissions); err != nil {
		return err
	}
	row := cx.AppID + "," + cx.UserID + "," + cx.FlowName + "," + cx.FlowRunID
	if _, err := os.Stat(filename); err != nil {
		if !os.IsNotExist(err) {
			return err
		}
		row = flowMappingHeader + "\n" + row
	}
	return appendRecord(filename, []byte(row))
}

func appendRecord(filename string, payload []byte) (err error) {
	if len(payload) == 0 {
		return nil
	}
	f, err := os.OpenFile(filename, os.O_APPEND|os.O_CREATE|os.O_WRONLY, filePermissions)
	if err != nil {
		// Could be disk full, fs went away, file is directory, wrong permissions
		return fmt.Errorf("Failed to open/create file: %v", err)
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	defer w.Flush()

	if _, err = w.Write(payload); err != nil {
		return
	}
	if payload[len(payload)-1] != newline {
		err = w.WriteByte(newline)
	}
	return
}
