// Package openapi serves the API description document. The document is
// assembled once at startup and served verbatim from /openapi.json.
package openapi

import (
	"encoding/json"
	"net/http"
	"sync"
)

type obj = map[string]any

var (
	once     sync.Once
	rendered []byte
)

// Handler returns the /openapi.json handler.
func Handler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		once.Do(func() {
			rendered, _ = json.Marshal(Document())
		})
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(rendered)
	}
}

// Document builds the OpenAPI 3.0 description of the riskboard API.
func Document() obj {
	return obj{
		"openapi": "3.0.0",
		"info": obj{
			"title":   "Riskboard GRC Platform",
			"version": "1.0.0",
		},
		"paths": paths(),
	}
}

func paths() obj {
	return obj{
		"/auth/login": obj{
			"post": obj{
				"summary":     "Authenticate a user",
				"requestBody": jsonBody(credentialsSchema(), true),
				"responses":   responses(200, "Authenticated session", sessionSchema()),
			},
		},
		"/auth/refresh": obj{
			"post": obj{
				"summary":   "Rotate the bearer token",
				"responses": responses(200, "Refreshed session", sessionSchema()),
			},
		},
		"/auth/me": obj{
			"get": obj{
				"summary": "Retrieve the currently authenticated user",
				"responses": merge(
					responses(200, "User information", userSchema()),
					obj{"401": obj{"description": "Not authenticated"}},
				),
			},
		},
		"/risks": obj{
			"get": obj{
				"summary":    "List risks with optional filters",
				"parameters": []obj{queryParam("status"), queryParam("owner")},
				"responses":  responses(200, "List of risks", arrayOf(riskSchema())),
			},
			"post": obj{
				"summary":     "Create a risk entry",
				"requestBody": jsonBody(riskSchema(), true),
				"responses":   responses(201, "Risk created", riskSchema()),
			},
		},
		"/risks/summary": obj{
			"get": obj{
				"summary":   "Risk exposure summary",
				"responses": responses(200, "Aggregated metrics", summarySchema()),
			},
		},
		"/risks/follow-ups": obj{
			"get": obj{
				"summary":    "List follow-up actions by risk",
				"parameters": []obj{queryParam("riskId")},
				"responses":  responses(200, "Follow-up actions", arrayOf(followUpSchema())),
			},
			"post": obj{
				"summary":     "Record a follow-up action",
				"requestBody": jsonBody(followUpSchema(), true),
				"responses":   responses(201, "Follow-up recorded", followUpSchema()),
			},
		},
		"/risks/{id}": obj{
			"put": obj{
				"summary":     "Update a risk",
				"parameters":  []obj{pathParam("id")},
				"requestBody": jsonBody(riskSchema(), true),
				"responses":   responses(200, "Risk updated", riskSchema()),
			},
			"patch": obj{
				"summary":     "Partially update a risk",
				"parameters":  []obj{pathParam("id")},
				"requestBody": jsonBody(withoutRequired(riskSchema()), true),
				"responses":   responses(200, "Risk updated", riskSchema()),
			},
		},
		"/risks/{id}/questionnaire": obj{
			"post": obj{
				"summary":     "Submit a risk identification questionnaire",
				"parameters":  []obj{pathParam("id")},
				"requestBody": jsonBody(questionnaireSchema(), true),
				"responses":   responses(201, "Risk intake recorded", riskSchema()),
			},
		},
		"/audits": obj{
			"get": obj{
				"summary":    "List audit engagements",
				"parameters": []obj{queryParam("status"), queryParam("owner")},
				"responses":  responses(200, "Audits", arrayOf(auditSchema())),
			},
			"post": obj{
				"summary":     "Plan an audit engagement",
				"requestBody": jsonBody(auditSchema(), true),
				"responses":   responses(201, "Audit created", auditSchema()),
			},
		},
		"/audits/{id}": obj{
			"put": obj{
				"summary":     "Update an audit engagement",
				"parameters":  []obj{pathParam("id")},
				"requestBody": jsonBody(withoutRequired(auditSchema()), true),
				"responses":   responses(200, "Audit updated", auditSchema()),
			},
			"patch": obj{
				"summary":     "Partially update an audit engagement",
				"parameters":  []obj{pathParam("id")},
				"requestBody": jsonBody(withoutRequired(auditSchema()), true),
				"responses":   responses(200, "Audit updated", auditSchema()),
			},
		},
		"/audits/{id}/findings": obj{
			"post": obj{
				"summary":     "Attach a finding to an engagement",
				"parameters":  []obj{pathParam("id")},
				"requestBody": jsonBody(findingSchema(), true),
				"responses":   responses(201, "Finding recorded", auditSchema()),
			},
		},
		"/audits/timesheets": obj{
			"get": obj{
				"summary":    "List timesheet entries",
				"parameters": []obj{queryParam("auditor")},
				"responses":  responses(200, "Timesheet entries", arrayOf(timesheetSchema())),
			},
			"post": obj{
				"summary":     "Record a timesheet entry",
				"requestBody": jsonBody(timesheetSchema(), true),
				"responses":   responses(201, "Timesheet recorded", timesheetSchema()),
			},
		},
		"/audits/working-papers": obj{
			"get": obj{
				"summary":    "List working papers",
				"parameters": []obj{queryParam("auditId")},
				"responses":  responses(200, "Working papers", arrayOf(workingPaperSchema())),
			},
			"post": obj{
				"summary":     "Create a working paper",
				"requestBody": jsonBody(workingPaperSchema(), true),
				"responses":   responses(201, "Working paper created", workingPaperSchema()),
			},
		},
		"/audits/working-papers/{id}": obj{
			"patch": obj{
				"summary":     "Update working paper status",
				"parameters":  []obj{pathParam("id")},
				"requestBody": jsonBody(paperStatusSchema(), true),
				"responses":   responses(200, "Working paper updated", workingPaperSchema()),
			},
		},
		"/audits/{id}/feedback": obj{
			"post": obj{
				"summary":     "Submit engagement feedback",
				"parameters":  []obj{pathParam("id")},
				"requestBody": jsonBody(feedbackSchema(), true),
				"responses":   responses(201, "Feedback recorded", feedbackSchema()),
			},
		},
		"/reports": obj{
			"get": obj{
				"summary":    "List reports",
				"parameters": []obj{queryParam("status"), queryParam("owner")},
				"responses":  responses(200, "Reports", arrayOf(reportSchema())),
			},
			"post": obj{
				"summary":     "Generate and store a report",
				"requestBody": jsonBody(reportInputSchema(), false),
				"responses":   responses(201, "Report stored", reportSchema()),
			},
		},
		"/reports/{id}": obj{
			"get": obj{
				"summary":    "Get report details",
				"parameters": []obj{pathParam("id")},
				"responses": merge(
					responses(200, "Report details", reportSchema()),
					obj{"404": obj{"description": "Report not found"}},
				),
			},
		},
		"/reports/{id}/generate": obj{
			"post": obj{
				"summary":    "Regenerate a report from current risk and audit data",
				"parameters": []obj{pathParam("id")},
				"responses":  responses(201, "Report generated", reportSchema()),
			},
		},
		"/reports/summary": obj{
			"get": obj{
				"summary":   "Retrieve the live aggregate snapshot",
				"responses": responses(200, "Aggregated report snapshot", snapshotSchema()),
			},
		},
	}
}

func riskSchema() obj {
	return schema(obj{
		"id":           str(),
		"title":        str(),
		"category":     str(),
		"inherentRisk": num(),
		"residualRisk": num(),
		"owner":        str(),
		"status":       enum("open", "mitigated", "closed"),
	}, "title", "category", "owner")
}

func followUpSchema() obj {
	return schema(obj{
		"id":      str(),
		"riskId":  str(),
		"action":  str(),
		"owner":   str(),
		"dueDate": date(),
		"status":  enum("pending", "in-progress", "complete"),
	}, "riskId", "action", "owner", "dueDate")
}

func auditSchema() obj {
	return schema(obj{
		"id":             str(),
		"code":           str(),
		"title":          str(),
		"owner":          str(),
		"startDate":      date(),
		"endDate":        date(),
		"status":         enum("planned", "in_progress", "completed"),
		"scope":          str(),
		"readinessScore": num(),
		"coverage":       num(),
	}, "title", "owner", "startDate", "endDate")
}

func findingSchema() obj {
	return schema(obj{
		"title":       str(),
		"description": str(),
		"severity":    enum("low", "medium", "high", "critical"),
		"remediation": str(),
		"owner":       str(),
		"dueDate":     date(),
	}, "title", "severity")
}

func timesheetSchema() obj {
	return schema(obj{
		"id":         str(),
		"auditor":    str(),
		"date":       date(),
		"hours":      num(),
		"engagement": str(),
	}, "auditor", "date", "hours", "engagement")
}

func workingPaperSchema() obj {
	return schema(obj{
		"id":        str(),
		"auditId":   str(),
		"name":      str(),
		"owner":     str(),
		"status":    enum("draft", "review", "approved"),
		"updatedAt": dateTime(),
	}, "auditId", "name", "owner")
}

func paperStatusSchema() obj {
	return schema(obj{"status": enum("draft", "review", "approved")}, "status")
}

func feedbackSchema() obj {
	return schema(obj{
		"engagementId": str(),
		"rating":       obj{"type": "integer", "minimum": 1, "maximum": 5},
		"comment":      str(),
	}, "rating")
}

func reportSchema() obj {
	return schema(obj{
		"id":         str(),
		"title":      str(),
		"owner":      str(),
		"status":     enum("draft", "issued"),
		"issuedDate": date(),
	}, "title", "owner", "status")
}

func reportInputSchema() obj {
	return schema(obj{"title": str(), "owner": str()})
}

func userSchema() obj {
	return schema(obj{
		"id":       str(),
		"username": str(),
		"name":     str(),
		"email":    obj{"type": "string", "format": "email"},
		"role":     enum("admin", "auditor", "risk_manager"),
	}, "id", "username", "name", "email", "role")
}

func credentialsSchema() obj {
	return schema(obj{"username": str(), "password": str()}, "username", "password")
}

func sessionSchema() obj {
	return schema(obj{"token": str(), "user": userSchema()})
}

func questionnaireSchema() obj {
	return schema(obj{
		"riskId": str(),
		"responses": schema(obj{
			"owner":        str(),
			"riskCategory": str(),
			"likelihood":   str(),
			"impact":       str(),
			"description":  str(),
			"controls":     str(),
		}),
	}, "responses")
}

func summarySchema() obj {
	return schema(obj{
		"totalRisks":  obj{"type": "integer"},
		"highRisks":   obj{"type": "integer"},
		"mediumRisks": obj{"type": "integer"},
		"lowRisks":    obj{"type": "integer"},
		"trend": arrayOf(schema(obj{
			"month":  str(),
			"high":   obj{"type": "integer"},
			"medium": obj{"type": "integer"},
			"low":    obj{"type": "integer"},
		})),
	})
}

func snapshotSchema() obj {
	return schema(obj{
		"generatedAt": dateTime(),
		"riskSummary": summarySchema(),
		"auditOverview": schema(obj{
			"total":    obj{"type": "integer"},
			"byStatus": obj{"type": "object", "additionalProperties": obj{"type": "integer"}},
		}),
	})
}

func schema(properties obj, required ...string) obj {
	s := obj{"type": "object", "properties": properties}
	if len(required) > 0 {
		s["required"] = required
	}
	return s
}

func withoutRequired(s obj) obj {
	out := obj{}
	for k, v := range s {
		if k != "required" {
			out[k] = v
		}
	}
	return out
}

func arrayOf(items obj) obj { return obj{"type": "array", "items": items} }

func str() obj      { return obj{"type": "string"} }
func num() obj      { return obj{"type": "number"} }
func date() obj     { return obj{"type": "string", "format": "date"} }
func dateTime() obj { return obj{"type": "string", "format": "date-time"} }

func enum(values ...string) obj { return obj{"type": "string", "enum": values} }

func queryParam(name string) obj {
	return obj{"name": name, "in": "query", "schema": str()}
}

func pathParam(name string) obj {
	return obj{"name": name, "in": "path", "required": true, "schema": str()}
}

func jsonBody(s obj, required bool) obj {
	return obj{
		"required": required,
		"content":  obj{"application/json": obj{"schema": s}},
	}
}

func responses(status int, description string, s obj) obj {
	key := "200"
	if status == 201 {
		key = "201"
	}
	return obj{key: obj{
		"description": description,
		"content":     obj{"application/json": obj{"schema": s}},
	}}
}

func merge(maps ...obj) obj {
	out := obj{}
	for _, m := range maps {
		for k, v := range m {
			out[k] = v
		}
	}
	return out
}
