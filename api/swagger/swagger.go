package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "Department Communication Center API",
        "description": "Announcement board and query/reply threads for the department portal",
        "version": "1.0.0"
    },
    "basePath": "/",
    "schemes": [
        "http"
    ],
    "tags": [
        {"name": "Announcements", "description": "Role-targeted departmental announcements"},
        {"name": "Queries", "description": "Student query / staff reply threads"},
        {"name": "Files", "description": "Signed attachment downloads"}
    ],
    "paths": {
        "/health": {
            "get": {
                "summary": "Health check",
                "responses": {
                    "200": {"description": "OK"}
                }
            }
        },
        "/ready": {
            "get": {
                "summary": "Readiness check",
                "responses": {
                    "200": {"description": "Ready"}
                }
            }
        },
        "/api/v1/announcements": {
            "get": {
                "tags": ["Announcements"],
                "summary": "List announcements visible to the caller",
                "parameters": [
                    {"name": "category", "in": "query", "type": "string"},
                    {"name": "page", "in": "query", "type": "integer"},
                    {"name": "limit", "in": "query", "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "post": {
                "tags": ["Announcements"],
                "summary": "Post an announcement with optional attachments",
                "consumes": ["multipart/form-data"],
                "parameters": [
                    {"name": "title", "in": "formData", "required": true, "type": "string"},
                    {"name": "message", "in": "formData", "required": true, "type": "string"},
                    {"name": "category", "in": "formData", "type": "string"},
                    {"name": "targetRole", "in": "formData", "type": "string", "description": "Comma-joined role tags"},
                    {"name": "department", "in": "formData", "type": "string"},
                    {"name": "files", "in": "formData", "type": "file"}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/api/v1/announcements/{id}": {
            "delete": {
                "tags": ["Announcements"],
                "summary": "Delete an announcement (author only)",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "403": {"description": "Not the author"}
                }
            }
        },
        "/api/v1/announcements/export": {
            "get": {
                "tags": ["Announcements"],
                "summary": "Export visible announcements as a PDF digest",
                "produces": ["application/pdf"],
                "responses": {
                    "200": {"description": "PDF document"}
                }
            }
        },
        "/api/v1/queries": {
            "get": {
                "tags": ["Queries"],
                "summary": "List query threads",
                "parameters": [
                    {"name": "search", "in": "query", "type": "string", "description": "Matches student and subject"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "post": {
                "tags": ["Queries"],
                "summary": "Submit a new student query",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/SubmitQueryRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/api/v1/queries/{id}/reply": {
            "post": {
                "tags": ["Queries"],
                "summary": "Reply to a query thread",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/ReplyQueryRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/api/v1/queries/export": {
            "get": {
                "tags": ["Queries"],
                "summary": "Export query threads as CSV",
                "produces": ["text/csv"],
                "responses": {
                    "200": {"description": "CSV document"}
                }
            }
        },
        "/files/{name}": {
            "get": {
                "tags": ["Files"],
                "summary": "Download an attachment via signed token",
                "parameters": [
                    {"name": "name", "in": "path", "required": true, "type": "string"},
                    {"name": "token", "in": "query", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "File content"}
                }
            }
        }
    },
    "definitions": {
        "Announcement": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "title": {"type": "string"},
                "message": {"type": "string"},
                "category": {"type": "string"},
                "targetRole": {"type": "array", "items": {"type": "string"}},
                "department": {"type": "string"},
                "createdBy": {"$ref": "#/definitions/CreatedBy"},
                "creatorRole": {"type": "string"},
                "attachments": {"type": "array", "items": {"$ref": "#/definitions/Attachment"}},
                "createdAt": {"type": "string"}
            }
        },
        "CreatedBy": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "name": {"type": "string"},
                "avatar": {"type": "string"}
            }
        },
        "Attachment": {
            "type": "object",
            "properties": {
                "name": {"type": "string"},
                "url": {"type": "string"},
                "type": {"type": "string"}
            }
        },
        "Query": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "student": {"type": "string"},
                "rollNo": {"type": "string"},
                "subject": {"type": "string"},
                "message": {"type": "string"},
                "status": {"type": "string", "enum": ["pending", "replied"]},
                "reply": {"type": "string"},
                "date": {"type": "string"}
            }
        },
        "SubmitQueryRequest": {
            "type": "object",
            "properties": {
                "rollNo": {"type": "string"},
                "subject": {"type": "string"},
                "message": {"type": "string"}
            },
            "required": ["rollNo", "subject", "message"]
        },
        "ReplyQueryRequest": {
            "type": "object",
            "properties": {
                "reply": {"type": "string"}
            },
            "required": ["reply"]
        },
        "Pagination": {
            "type": "object",
            "properties": {
                "page": {"type": "integer"},
                "page_size": {"type": "integer"},
                "total_count": {"type": "integer"}
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
                "success": {"type": "boolean"},
                "data": {"type": "object"},
                "error": {"$ref": "#/definitions/APIError"},
                "pagination": {"$ref": "#/definitions/Pagination"}
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
