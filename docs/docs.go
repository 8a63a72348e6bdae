// Package docs holds the OpenAPI document served at /swagger.json.
package docs

import "github.com/swaggo/swag"

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "contact": {},
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "paths": {
        "/api/count": {
            "get": {
                "description": "Returns count_number of the row with the highest id. An empty table is seeded with count 1.",
                "produces": ["application/json"],
                "tags": ["Count"],
                "summary": "Get latest count",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/dto.CountResponse"}},
                    "500": {"description": "Internal server error", "schema": {"$ref": "#/definitions/dto.APIResponse"}}
                }
            }
        },
        "/api/count/increment": {
            "post": {
                "description": "Atomically increments the row with the highest id, seeding the table first when empty.",
                "produces": ["application/json"],
                "tags": ["Count"],
                "summary": "Increment latest count",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/dto.IncrementCountResponse"}},
                    "500": {"description": "Internal server error", "schema": {"$ref": "#/definitions/dto.APIResponse"}}
                }
            }
        },
        "/counts/": {
            "get": {
                "produces": ["application/json"],
                "tags": ["Counts"],
                "summary": "List counts",
                "parameters": [
                    {"minimum": 0, "type": "integer", "default": 0, "description": "Rows to skip", "name": "skip", "in": "query"},
                    {"minimum": 0, "type": "integer", "default": 100, "description": "Maximum rows to return", "name": "limit", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "array", "items": {"$ref": "#/definitions/dto.CountView"}}},
                    "400": {"description": "Invalid pagination", "schema": {"$ref": "#/definitions/dto.APIResponse"}},
                    "500": {"description": "Internal server error", "schema": {"$ref": "#/definitions/dto.APIResponse"}}
                }
            },
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["Counts"],
                "summary": "Create count",
                "parameters": [
                    {"description": "Count to create", "name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/dto.CreateCountRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/dto.CountView"}},
                    "400": {"description": "Validation error or invalid request", "schema": {"$ref": "#/definitions/dto.APIResponse"}},
                    "500": {"description": "Internal server error", "schema": {"$ref": "#/definitions/dto.APIResponse"}}
                }
            }
        },
        "/counts/export": {
            "get": {
                "produces": ["application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"],
                "tags": ["Counts"],
                "summary": "Export counts",
                "responses": {
                    "200": {"description": "xlsx workbook", "schema": {"type": "file"}},
                    "500": {"description": "Internal server error", "schema": {"$ref": "#/definitions/dto.APIResponse"}}
                }
            }
        },
        "/counts/{id}": {
            "get": {
                "produces": ["application/json"],
                "tags": ["Counts"],
                "summary": "Get count",
                "parameters": [
                    {"type": "integer", "description": "Count ID", "name": "id", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/dto.CountView"}},
                    "400": {"description": "Invalid id", "schema": {"$ref": "#/definitions/dto.APIResponse"}},
                    "404": {"description": "Count not found", "schema": {"$ref": "#/definitions/dto.APIResponse"}},
                    "500": {"description": "Internal server error", "schema": {"$ref": "#/definitions/dto.APIResponse"}}
                }
            },
            "put": {
                "description": "Only fields present in the body are applied. An empty body returns the row unchanged.",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["Counts"],
                "summary": "Update count",
                "parameters": [
                    {"type": "integer", "description": "Count ID", "name": "id", "in": "path", "required": true},
                    {"description": "Fields to update", "name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/dto.UpdateCountRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/dto.CountView"}},
                    "400": {"description": "Validation error or invalid request", "schema": {"$ref": "#/definitions/dto.APIResponse"}},
                    "404": {"description": "Count not found", "schema": {"$ref": "#/definitions/dto.APIResponse"}},
                    "500": {"description": "Internal server error", "schema": {"$ref": "#/definitions/dto.APIResponse"}}
                }
            },
            "delete": {
                "tags": ["Counts"],
                "summary": "Delete count",
                "parameters": [
                    {"type": "integer", "description": "Count ID", "name": "id", "in": "path", "required": true}
                ],
                "responses": {
                    "204": {"description": "Deleted"},
                    "400": {"description": "Invalid id", "schema": {"$ref": "#/definitions/dto.APIResponse"}},
                    "404": {"description": "Count not found", "schema": {"$ref": "#/definitions/dto.APIResponse"}},
                    "500": {"description": "Internal server error", "schema": {"$ref": "#/definitions/dto.APIResponse"}}
                }
            }
        },
        "/counts/{id}/increment": {
            "post": {
                "produces": ["application/json"],
                "tags": ["Counts"],
                "summary": "Increment count by id",
                "parameters": [
                    {"type": "integer", "description": "Count ID", "name": "id", "in": "path", "required": true},
                    {"type": "integer", "default": 1, "description": "Step to add, may be negative", "name": "by", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/dto.CountView"}},
                    "400": {"description": "Invalid id or step", "schema": {"$ref": "#/definitions/dto.APIResponse"}},
                    "404": {"description": "Count not found", "schema": {"$ref": "#/definitions/dto.APIResponse"}},
                    "500": {"description": "Internal server error", "schema": {"$ref": "#/definitions/dto.APIResponse"}}
                }
            }
        },
        "/health": {
            "get": {
                "produces": ["application/json"],
                "tags": ["Health"],
                "summary": "Liveness probe",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/dto.HealthResponse"}}
                }
            }
        },
        "/ready": {
            "get": {
                "produces": ["application/json"],
                "tags": ["Health"],
                "summary": "Readiness probe",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/dto.ReadinessResponse"}},
                    "503": {"description": "Service Unavailable", "schema": {"$ref": "#/definitions/dto.ReadinessResponse"}}
                }
            }
        }
    },
    "definitions": {
        "dto.APIResponse": {
            "type": "object",
            "properties": {
                "data": {},
                "error": {},
                "message": {"type": "string"},
                "success": {"type": "boolean"}
            }
        },
        "dto.CountResponse": {
            "type": "object",
            "properties": {
                "count": {"type": "integer", "example": 1}
            }
        },
        "dto.CountView": {
            "type": "object",
            "properties": {
                "count_number": {"type": "integer", "example": 3},
                "created_at": {"type": "string", "example": "2024-01-01T00:00:00Z"},
                "description": {"type": "string", "example": "page views"},
                "id": {"type": "integer", "example": 1},
                "updated_at": {"type": "string", "example": "2024-01-01T00:05:00Z"}
            }
        },
        "dto.CreateCountRequest": {
            "type": "object",
            "required": ["count_number"],
            "properties": {
                "count_number": {"type": "integer", "example": 0},
                "description": {"type": "string", "maxLength": 255, "example": "page views"}
            }
        },
        "dto.HealthResponse": {
            "type": "object",
            "properties": {
                "status": {"type": "string", "example": "healthy"}
            }
        },
        "dto.IncrementCountResponse": {
            "type": "object",
            "properties": {
                "count": {"type": "integer", "example": 2},
                "message": {"type": "string", "example": "Count incremented successfully"}
            }
        },
        "dto.ReadinessResponse": {
            "type": "object",
            "properties": {
                "database": {"type": "string", "example": "ok"},
                "status": {"type": "string", "example": "ready"}
            }
        },
        "dto.UpdateCountRequest": {
            "type": "object",
            "properties": {
                "count_number": {"type": "integer", "example": 42},
                "description": {"type": "string", "maxLength": 255, "example": "renamed"}
            }
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0.0",
	Host:             "",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "Counter API",
	Description:      "HTTP backend over a persisted integer counter (count_table).",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
