package rule

import (
	"ankifield/internal/domain/note"
	"ankifield/internal/domain/updater"
)

type listOutput struct {
	Body rulesListResponse
}

type rulesListResponse struct {
	Rules []note.Rule `json:"rules"`
}

type runInput struct {
	Name   string `path:"name" example:"polish-audio" doc:"Имя правила"`
	DryRun bool   `query:"dry_run" doc:"Только показать заметки, которые будут обновлены"`
}

type runOutput struct {
	Status int
	Body   runResponse
}

type runResponse struct {
	Status string          `json:"status"`
	Report *updater.Report `json:"report,omitempty"`
	Error  string          `json:"error,omitempty"`
}
