package application

import "strconv"

// Node ids. A job id carries a "job:" infix so that a job named "label" or
// "time" never lands on a pipeline's sub-region.

func projectKey(projectID int64) string {
	return "pr" + strconv.FormatInt(projectID, 10)
}

func pipelineKey(projectID, pipelineID int64) string {
	return projectKey(projectID) + "_pl" + strconv.FormatInt(pipelineID, 10)
}

func labelKey(projectID, pipelineID int64) string {
	return pipelineKey(projectID, pipelineID) + "_label"
}

func timeKey(projectID, pipelineID int64) string {
	return pipelineKey(projectID, pipelineID) + "_time"
}

func jobKey(projectID, pipelineID int64, name string) string {
	return pipelineKey(projectID, pipelineID) + "_job:" + name
}
