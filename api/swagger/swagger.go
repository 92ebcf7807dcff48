package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "Elimu SMS API",
        "description": "Grade processing and report aggregation for Kenyan schools",
        "version": "0.1.0"
    },
    "basePath": "/api/v1",
    "schemes": [
        "http"
    ],
    "tags": [
        {"name": "Results", "description": "Assessment result entry"},
        {"name": "Reports", "description": "Report cards and class performance"}
    ],
    "paths": {
        "/results": {
            "post": {
                "tags": ["Results"],
                "summary": "Record a single assessment result",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "parameters": [
                    {"name": "X-School-ID", "in": "header", "type": "string", "required": true},
                    {"name": "X-User-ID", "in": "header", "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/SubmitResultRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "400": {"description": "Validation error"},
                    "404": {"description": "Student or assessment not found"}
                }
            }
        },
        "/results/bulk": {
            "post": {
                "tags": ["Results"],
                "summary": "Record results for many students against one assessment",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "parameters": [
                    {"name": "X-School-ID", "in": "header", "type": "string", "required": true},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/BulkSubmitRequest"}}
                ],
                "responses": {
                    "200": {"description": "Batch outcome with per-row failures", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/results/upload": {
            "post": {
                "tags": ["Results"],
                "summary": "Record results from a CSV upload",
                "consumes": ["multipart/form-data"],
                "produces": ["application/json"],
                "parameters": [
                    {"name": "X-School-ID", "in": "header", "type": "string", "required": true},
                    {"name": "assessment_id", "in": "formData", "type": "string", "required": true},
                    {"name": "file", "in": "formData", "type": "file", "required": true}
                ],
                "responses": {
                    "200": {"description": "Batch outcome with per-row failures", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/results/{id}": {
            "patch": {
                "tags": ["Results"],
                "summary": "Amend a recorded result",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "parameters": [
                    {"name": "X-School-ID", "in": "header", "type": "string", "required": true},
                    {"name": "id", "in": "path", "type": "string", "required": true},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/UpdateResultRequest"}}
                ],
                "responses": {
                    "200": {"description": "Updated result", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Result not found"}
                }
            },
            "delete": {
                "tags": ["Results"],
                "summary": "Remove a recorded result",
                "parameters": [
                    {"name": "X-School-ID", "in": "header", "type": "string", "required": true},
                    {"name": "id", "in": "path", "type": "string", "required": true}
                ],
                "responses": {
                    "204": {"description": "Deleted"},
                    "404": {"description": "Result not found"}
                }
            }
        },
        "/reports/report-card/{studentId}": {
            "get": {
                "tags": ["Reports"],
                "summary": "Assemble a student report card for a term",
                "produces": ["application/json", "text/csv", "application/pdf"],
                "parameters": [
                    {"name": "X-School-ID", "in": "header", "type": "string", "required": true},
                    {"name": "studentId", "in": "path", "type": "string", "required": true},
                    {"name": "termId", "in": "query", "type": "string", "required": true},
                    {"name": "format", "in": "query", "type": "string", "enum": ["json", "csv", "pdf"]}
                ],
                "responses": {
                    "200": {"description": "Report card", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Student or term not found"}
                }
            }
        },
        "/reports/class-performance/{classId}": {
            "get": {
                "tags": ["Reports"],
                "summary": "Assemble a class performance report for a term",
                "produces": ["application/json", "text/csv", "application/pdf"],
                "parameters": [
                    {"name": "X-School-ID", "in": "header", "type": "string", "required": true},
                    {"name": "classId", "in": "path", "type": "string", "required": true},
                    {"name": "termId", "in": "query", "type": "string", "required": true},
                    {"name": "format", "in": "query", "type": "string", "enum": ["json", "csv", "pdf"]}
                ],
                "responses": {
                    "200": {"description": "Class performance report", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Class or term not found"}
                }
            }
        }
    },
    "definitions": {
        "SubmitResultRequest": {
            "type": "object",
            "required": ["student_id", "assessment_id"],
            "properties": {
                "student_id": {"type": "string"},
                "assessment_id": {"type": "string"},
                "marks": {"type": "number"},
                "grade": {"type": "string"},
                "competency_level": {"type": "string"},
                "comment": {"type": "string"}
            }
        },
        "BulkSubmitRequest": {
            "type": "object",
            "required": ["assessment_id", "entries"],
            "properties": {
                "assessment_id": {"type": "string"},
                "entries": {
                    "type": "array",
                    "items": {
                        "type": "object",
                        "properties": {
                            "student_id": {"type": "string"},
                            "marks": {"type": "number"},
                            "comment": {"type": "string"}
                        }
                    }
                }
            }
        },
        "UpdateResultRequest": {
            "type": "object",
            "properties": {
                "marks": {"type": "number"},
                "grade": {"type": "string"},
                "competency_level": {"type": "string"},
                "comment": {"type": "string"}
            }
        },
        "APIError": {
            "type": "object",
            "properties": {
                "code": {"type": "string"},
                "message": {"type": "string"},
                "status": {"type": "integer"}
            }
        },
        "ResponseEnvelope": {
            "type": "object",
            "properties": {
                "data": {"type": "object"},
                "error": {"$ref": "#/definitions/APIError"},
                "meta": {"type": "object"}
            }
        }
    }
}`

type swaggerDoc struct{}

// ReadDoc returns the Swagger document.
func (s *swaggerDoc) ReadDoc() string {
	return docTemplate
}

func init() {
	swag.Register(swag.Name, &swaggerDoc{})
}
