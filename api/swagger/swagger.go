// Package swagger registers the API document served under /docs.
package swagger

import (
	"encoding/json"
	"sync"

	"github.com/swaggo/swag"

	"github.com/noah-isme/sma-dashboard/internal/models"
)

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "School Dashboard API",
        "description": "Resource endpoints consumed by the school dashboard",
        "version": "1.0.0"
    },
    "basePath": "/",
    "schemes": ["http", "https"],
    "securityDefinitions": {
        "Bearer": {"type": "apiKey", "name": "Authorization", "in": "header"}
    },
    "paths": {
        "/health": {
            "get": {"summary": "Health check", "responses": {"200": {"description": "OK"}}}
        },
        "/ready": {
            "get": {"summary": "Readiness check", "responses": {"200": {"description": "Ready"}, "503": {"description": "A dependency is down"}}}
        },
        "/dev/token": {
            "post": {
                "summary": "Issue a development bearer token",
                "parameters": [{"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/IssueTokenRequest"}}],
                "responses": {"201": {"description": "Created"}}
            }
        }
    },
    "definitions": {
        "IssueTokenRequest": {
            "type": "object",
            "required": ["subject"],
            "properties": {"subject": {"type": "string"}, "name": {"type": "string"}}
        },
        "ListEnvelope": {
            "type": "object",
            "properties": {
                "data": {"type": "array", "items": {"type": "object"}},
                "total": {"type": "integer"},
                "page": {"type": "string", "example": "1"},
                "limit": {"type": "string", "example": "10"},
                "totalPages": {"type": "integer"}
            }
        },
        "RecordEnvelope": {
            "type": "object",
            "properties": {"data": {"type": "object"}}
        },
        "APIError": {
            "type": "object",
            "properties": {
                "code": {"type": "string"},
                "message": {"description": "A string, or a list of field messages for validation errors"}
            }
        }
    }
}`

type swaggerDoc struct {
	once sync.Once
	doc  string
}

// ReadDoc returns the Swagger document with one path group per resource.
func (s *swaggerDoc) ReadDoc() string {
	s.once.Do(func() { s.doc = build() })
	return s.doc
}

func build() string {
	var doc map[string]interface{}
	if err := json.Unmarshal([]byte(docTemplate), &doc); err != nil {
		return docTemplate
	}
	paths := doc["paths"].(map[string]interface{})
	for _, res := range models.Resources() {
		paths[res.Endpoint()] = collectionPath(res)
		paths[res.Endpoint()+"/{id}"] = itemPath(res)
	}
	raw, err := json.MarshalIndent(doc, "", "    ")
	if err != nil {
		return docTemplate
	}
	return string(raw)
}

func ref(name string) map[string]interface{} {
	return map[string]interface{}{"$ref": "#/definitions/" + name}
}

func errorResponses() map[string]interface{} {
	return map[string]interface{}{
		"400": map[string]interface{}{"description": "Validation failed", "schema": ref("APIError")},
		"401": map[string]interface{}{"description": "Missing or invalid token", "schema": ref("APIError")},
	}
}

func op(res models.Resource, summary string, params []interface{}, ok string, schema interface{}) map[string]interface{} {
	responses := errorResponses()
	success := map[string]interface{}{"description": "OK"}
	if schema != nil {
		success["schema"] = schema
	}
	responses[ok] = success
	return map[string]interface{}{
		"tags":       []string{res.Title},
		"summary":    summary,
		"security":   []map[string]interface{}{{"Bearer": []string{}}},
		"parameters": params,
		"responses":  responses,
	}
}

func collectionPath(res models.Resource) map[string]interface{} {
	listSchema := ref("ListEnvelope")
	listSummary := "List " + res.Title + " records"
	if res.BareList {
		listSchema = map[string]interface{}{"type": "array", "items": map[string]interface{}{"type": "object"}}
		listSummary += " (unpaginated array)"
	}
	query := []interface{}{
		map[string]interface{}{"name": "page", "in": "query", "type": "integer"},
		map[string]interface{}{"name": "limit", "in": "query", "type": "integer"},
		map[string]interface{}{"name": "search", "in": "query", "type": "string"},
	}
	body := []interface{}{
		map[string]interface{}{"name": "payload", "in": "body", "required": true, "schema": map[string]interface{}{"type": "object"}},
	}
	return map[string]interface{}{
		"get":  op(res, listSummary, query, "200", listSchema),
		"post": op(res, "Create "+res.Title, body, "201", ref("RecordEnvelope")),
	}
}

func itemPath(res models.Resource) map[string]interface{} {
	id := map[string]interface{}{"name": "id", "in": "path", "required": true, "type": "string"}
	body := map[string]interface{}{"name": "payload", "in": "body", "required": true, "schema": map[string]interface{}{"type": "object"}}
	return map[string]interface{}{
		"get":    op(res, "Get "+res.Title, []interface{}{id}, "200", ref("RecordEnvelope")),
		"put":    op(res, "Update "+res.Title, []interface{}{id, body}, "200", ref("RecordEnvelope")),
		"delete": op(res, "Delete "+res.Title, []interface{}{id}, "204", nil),
	}
}

func init() {
	swag.Register(swag.Name, &swaggerDoc{})
}
