package handler

import audit "navbat/pkg/platform/audit"

type CreateOrganizationResponse struct {
	Status string `json:"status"`
	ID     string `json:"id"`
}

type UpdateSecurityRulesResponse struct {
	Status string `json:"status"`
}

type AuditLogsResponse struct {
	Logs  []audit.Record `json:"logs"`
	Count int            `json:"count"`
}

func toAuditLogsResponse(records []audit.Record) AuditLogsResponse {
	if records == nil {
		records = []audit.Record{}
	}
	return AuditLogsResponse{Logs: records, Count: len(records)}
}
