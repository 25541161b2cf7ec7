package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "Course Planner API",
        "description": "Build conflict-free weekly class schedules from the UMD catalog.",
        "version": "1.0.0"
    },
    "basePath": "/",
    "schemes": [
        "http"
    ],
    "securityDefinitions": {
        "SessionToken": {
            "type": "apiKey",
            "in": "header",
            "name": "X-Session-Token"
        }
    },
    "tags": [
        {
            "name": "System",
            "description": "Health and instrumentation"
        },
        {
            "name": "Sessions",
            "description": "Anonymous planner sessions"
        },
        {
            "name": "Catalog",
            "description": "Course and professor lookups"
        },
        {
            "name": "Schedule",
            "description": "Session schedule building"
        },
        {
            "name": "SavedSchedules",
            "description": "Named schedule snapshots"
        }
    ],
    "paths": {
        "/health": {
            "get": {
                "tags": [
                    "System"
                ],
                "summary": "Liveness check",
                "responses": {
                    "200": {
                        "description": "OK"
                    }
                }
            }
        },
        "/ready": {
            "get": {
                "tags": [
                    "System"
                ],
                "summary": "Readiness check over Redis and Postgres",
                "responses": {
                    "200": {
                        "description": "Ready"
                    },
                    "503": {
                        "description": "A dependency is unreachable"
                    }
                }
            }
        },
        "/metrics": {
            "get": {
                "tags": [
                    "System"
                ],
                "summary": "Prometheus metrics",
                "produces": [
                    "text/plain"
                ],
                "responses": {
                    "200": {
                        "description": "OK"
                    }
                }
            }
        },
        "/api/v1/metrics/summary": {
            "get": {
                "tags": [
                    "System"
                ],
                "summary": "Instrumentation snapshot",
                "produces": [
                    "application/json"
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                }
            }
        },
        "/api/v1/sessions": {
            "post": {
                "tags": [
                    "Sessions"
                ],
                "summary": "Issue an anonymous planner session",
                "produces": [
                    "application/json"
                ],
                "responses": {
                    "201": {
                        "description": "Created",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                }
            }
        },
        "/api/v1/catalog/courses": {
            "get": {
                "tags": [
                    "Catalog"
                ],
                "summary": "List courses alphabetically",
                "produces": [
                    "application/json"
                ],
                "parameters": [
                    {
                        "name": "page",
                        "in": "query",
                        "type": "integer",
                        "description": "Page number, 30 courses per page",
                        "required": false
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "400": {
                        "description": "Invalid page",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "502": {
                        "description": "Catalog unavailable",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                }
            }
        },
        "/api/v1/catalog/courses/{code}": {
            "get": {
                "tags": [
                    "Catalog"
                ],
                "summary": "Get a course with sections and professors",
                "produces": [
                    "application/json"
                ],
                "parameters": [
                    {
                        "name": "code",
                        "in": "path",
                        "type": "string",
                        "required": true,
                        "description": "Course code, e.g. CMSC131"
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "404": {
                        "description": "Unknown course",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "502": {
                        "description": "Catalog unavailable",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                }
            }
        },
        "/api/v1/catalog/search": {
            "get": {
                "tags": [
                    "Catalog"
                ],
                "summary": "Search courses",
                "produces": [
                    "application/json"
                ],
                "parameters": [
                    {
                        "name": "q",
                        "in": "query",
                        "type": "string",
                        "description": "Search text",
                        "required": true
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "400": {
                        "description": "Missing query",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                }
            }
        },
        "/api/v1/catalog/gen-eds": {
            "get": {
                "tags": [
                    "Catalog"
                ],
                "summary": "List courses satisfying a gen-ed requirement",
                "produces": [
                    "application/json"
                ],
                "parameters": [
                    {
                        "name": "gen_ed",
                        "in": "query",
                        "type": "string",
                        "description": "Gen-ed code, e.g. DSNL",
                        "required": true
                    },
                    {
                        "name": "dept_id",
                        "in": "query",
                        "type": "string",
                        "description": "Department filter",
                        "required": false
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                }
            }
        },
        "/api/v1/catalog/professors": {
            "get": {
                "tags": [
                    "Catalog"
                ],
                "summary": "List professors",
                "produces": [
                    "application/json"
                ],
                "parameters": [
                    {
                        "name": "page",
                        "in": "query",
                        "type": "integer",
                        "description": "Page number, 100 professors per page",
                        "required": false
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                }
            }
        },
        "/api/v1/catalog/professors/{name}": {
            "get": {
                "tags": [
                    "Catalog"
                ],
                "summary": "Get a professor profile",
                "produces": [
                    "application/json"
                ],
                "parameters": [
                    {
                        "name": "name",
                        "in": "path",
                        "type": "string",
                        "required": true,
                        "description": "Professor name"
                    },
                    {
                        "name": "reviews",
                        "in": "query",
                        "type": "boolean",
                        "description": "Include reviews",
                        "required": false
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "404": {
                        "description": "Unknown professor",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                }
            }
        },
        "/api/v1/schedule": {
            "get": {
                "tags": [
                    "Schedule"
                ],
                "summary": "Get the session schedule",
                "produces": [
                    "application/json"
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "401": {
                        "description": "Missing or invalid session token",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                },
                "security": [
                    {
                        "SessionToken": []
                    }
                ]
            },
            "delete": {
                "tags": [
                    "Schedule"
                ],
                "summary": "Remove every section",
                "produces": [
                    "application/json"
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                },
                "security": [
                    {
                        "SessionToken": []
                    }
                ]
            }
        },
        "/api/v1/schedule/sections": {
            "post": {
                "tags": [
                    "Schedule"
                ],
                "summary": "Add a section; conflicts and unknown sections return applied=false",
                "produces": [
                    "application/json"
                ],
                "parameters": [
                    {
                        "name": "payload",
                        "in": "body",
                        "required": true,
                        "description": "Section to add",
                        "schema": {
                            "$ref": "#/definitions/AddSectionRequest"
                        }
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "400": {
                        "description": "Invalid payload",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                },
                "security": [
                    {
                        "SessionToken": []
                    }
                ]
            }
        },
        "/api/v1/schedule/sections/{sectionId}": {
            "delete": {
                "tags": [
                    "Schedule"
                ],
                "summary": "Remove a section",
                "produces": [
                    "application/json"
                ],
                "parameters": [
                    {
                        "name": "sectionId",
                        "in": "path",
                        "type": "string",
                        "required": true,
                        "description": "Section id, e.g. CMSC131-0101"
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                },
                "security": [
                    {
                        "SessionToken": []
                    }
                ]
            }
        },
        "/api/v1/schedule/serialized": {
            "get": {
                "tags": [
                    "Schedule"
                ],
                "summary": "Get the shareable serialized schedule",
                "produces": [
                    "application/json"
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                },
                "security": [
                    {
                        "SessionToken": []
                    }
                ]
            }
        },
        "/api/v1/schedule/load": {
            "post": {
                "tags": [
                    "Schedule"
                ],
                "summary": "Load a serialized schedule in append or replace mode",
                "produces": [
                    "application/json"
                ],
                "parameters": [
                    {
                        "name": "payload",
                        "in": "body",
                        "required": true,
                        "description": "Serialized schedule",
                        "schema": {
                            "$ref": "#/definitions/LoadScheduleRequest"
                        }
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                },
                "security": [
                    {
                        "SessionToken": []
                    }
                ]
            }
        },
        "/api/v1/schedule/export": {
            "get": {
                "tags": [
                    "Schedule"
                ],
                "summary": "Download the schedule",
                "produces": [
                    "text/csv",
                    "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
                    "application/pdf",
                    "text/calendar"
                ],
                "parameters": [
                    {
                        "name": "format",
                        "in": "query",
                        "type": "string",
                        "description": "csv, xlsx, pdf or ics (default csv)",
                        "required": false
                    }
                ],
                "responses": {
                    "200": {
                        "description": "File download",
                        "schema": {
                            "type": "file"
                        }
                    },
                    "400": {
                        "description": "Unknown format"
                    }
                },
                "security": [
                    {
                        "SessionToken": []
                    }
                ]
            }
        },
        "/api/v1/schedule/export/link": {
            "post": {
                "tags": [
                    "Schedule"
                ],
                "summary": "Create a signed download link for the schedule",
                "produces": [
                    "application/json"
                ],
                "parameters": [
                    {
                        "name": "format",
                        "in": "query",
                        "type": "string",
                        "description": "csv, xlsx, pdf or ics (default csv)",
                        "required": false
                    }
                ],
                "responses": {
                    "201": {
                        "description": "Signed link",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "400": {
                        "description": "Unknown format"
                    }
                },
                "security": [
                    {
                        "SessionToken": []
                    }
                ]
            }
        },
        "/api/v1/exports/{token}": {
            "get": {
                "tags": [
                    "Schedule"
                ],
                "summary": "Download a stored export through a signed link",
                "parameters": [
                    {
                        "name": "token",
                        "in": "path",
                        "type": "string",
                        "description": "Signed token",
                        "required": true
                    }
                ],
                "responses": {
                    "200": {
                        "description": "File download",
                        "schema": {
                            "type": "file"
                        }
                    },
                    "404": {
                        "description": "Link expired or export removed"
                    }
                }
            }
        },
        "/api/v1/saved-schedules": {
            "get": {
                "tags": [
                    "SavedSchedules"
                ],
                "summary": "List saved schedules of the session",
                "produces": [
                    "application/json"
                ],
                "parameters": [
                    {
                        "name": "page",
                        "in": "query",
                        "type": "integer",
                        "description": "Page",
                        "required": false
                    },
                    {
                        "name": "page_size",
                        "in": "query",
                        "type": "integer",
                        "description": "Page size, max 100",
                        "required": false
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                },
                "security": [
                    {
                        "SessionToken": []
                    }
                ]
            },
            "post": {
                "tags": [
                    "SavedSchedules"
                ],
                "summary": "Save the current schedule under a name",
                "produces": [
                    "application/json"
                ],
                "parameters": [
                    {
                        "name": "payload",
                        "in": "body",
                        "required": true,
                        "description": "Snapshot name",
                        "schema": {
                            "$ref": "#/definitions/SaveScheduleRequest"
                        }
                    }
                ],
                "responses": {
                    "201": {
                        "description": "Created",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "404": {
                        "description": "Saved schedules disabled"
                    }
                },
                "security": [
                    {
                        "SessionToken": []
                    }
                ]
            }
        },
        "/api/v1/saved-schedules/{id}": {
            "delete": {
                "tags": [
                    "SavedSchedules"
                ],
                "summary": "Delete a saved schedule",
                "produces": [
                    "application/json"
                ],
                "parameters": [
                    {
                        "name": "id",
                        "in": "path",
                        "type": "string",
                        "required": true,
                        "description": "Saved schedule ID"
                    }
                ],
                "responses": {
                    "204": {
                        "description": "Deleted"
                    },
                    "404": {
                        "description": "Not found"
                    }
                },
                "security": [
                    {
                        "SessionToken": []
                    }
                ]
            }
        },
        "/api/v1/saved-schedules/{id}/restore": {
            "post": {
                "tags": [
                    "SavedSchedules"
                ],
                "summary": "Replace the session schedule with a saved one",
                "produces": [
                    "application/json"
                ],
                "parameters": [
                    {
                        "name": "id",
                        "in": "path",
                        "type": "string",
                        "required": true,
                        "description": "Saved schedule ID"
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                },
                "security": [
                    {
                        "SessionToken": []
                    }
                ]
            }
        }
    },
    "definitions": {
        "AddSectionRequest": {
            "type": "object",
            "required": [
                "course_code",
                "section_number"
            ],
            "properties": {
                "course_code": {
                    "type": "string",
                    "example": "CMSC131"
                },
                "section_number": {
                    "type": "string",
                    "example": "0101"
                }
            }
        },
        "LoadScheduleRequest": {
            "type": "object",
            "properties": {
                "serialized": {
                    "type": "string",
                    "example": "CMSC131-0101,MATH140-0221"
                },
                "mode": {
                    "type": "string",
                    "enum": [
                        "append",
                        "replace"
                    ]
                }
            }
        },
        "SaveScheduleRequest": {
            "type": "object",
            "required": [
                "name"
            ],
            "properties": {
                "name": {
                    "type": "string",
                    "example": "Fall plan A"
                }
            }
        },
        "Pagination": {
            "type": "object",
            "properties": {
                "page": {
                    "type": "integer"
                },
                "page_size": {
                    "type": "integer"
                },
                "total_count": {
                    "type": "integer"
                }
            }
        },
        "APIError": {
            "type": "object",
            "properties": {
                "code": {
                    "type": "string"
                },
                "message": {
                    "type": "string"
                },
                "status": {
                    "type": "integer"
                }
            }
        },
        "ResponseEnvelope": {
            "type": "object",
            "properties": {
                "data": {
                    "type": "object"
                },
                "error": {
                    "$ref": "#/definitions/APIError"
                },
                "pagination": {
                    "$ref": "#/definitions/Pagination"
                },
                "meta": {
                    "type": "object"
                }
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
