package filesys

import (
	"path"
)

const (
	entitiesDirName = "entities"

	// StorageExtension is the fixed extension of entity history files; directory scans ignore
	// anything without it.
	StorageExtension = ".thist"

	flowMappingFilename = "app_flow_mapping.csv"
)

// Name of a cluster's directory under the entities root
func MakeClusterDirPath(root, clusterName string) string {
	return path.Join(root, entitiesDirName, clusterName)
}

// Name of the per-cluster flow-mapping index file
func MakeFlowMappingFilePath(root, clusterName string) string {
	return path.Join(root, entitiesDirName, clusterName, flowMappingFilename)
}

// The flow-run path is the cluster-relative fragment userName/flowName/flowRunID.
func MakeFlowRunPath(userName, flowName, flowRunID string) string {
	return userName + "/" + flowName + "/" + flowRunID
}

// Name of the directory holding one application's entity files of one type
func MakeEntityTypeDirPath(root, clusterName, flowRunPath, appID, entityType string) string {
	return path.Join(root, entitiesDirName, clusterName, flowRunPath, appID, entityType)
}

// Name of a single entity's history file
func MakeEntityFilePath(root, clusterName, flowRunPath, appID, entityType, entityID string) string {
	return path.Join(
		MakeEntityTypeDirPath(root, clusterName, flowRunPath, appID, entityType),
		entityID+StorageExtension,
	)
}
