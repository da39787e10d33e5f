package run

import "ankifield/internal/domain/history"

type listInput struct {
	Rule  string `query:"rule" doc:"Только запуски этого правила"`
	Limit int    `query:"limit" minimum:"0" maximum:"1000" default:"20" doc:"Максимум записей"`
}

type listOutput struct {
	Body runsListResponse
}

type runsListResponse struct {
	Runs []history.Run `json:"runs"`
}
