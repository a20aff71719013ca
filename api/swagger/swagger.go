package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "Society Events API",
        "description": "Events calendar keyed by the university's academic weeks",
        "version": "1.0.0"
    },
    "basePath": "/api/v1",
    "schemes": [
        "http",
        "https"
    ],
    "tags": [
        {"name": "Events", "description": "Event lifecycle and listings"},
        {"name": "Tags", "description": "Event tags"},
        {"name": "Search", "description": "Category, tag and event search"},
        {"name": "Keys", "description": "API key management"},
        {"name": "Feed", "description": "iCalendar feed"}
    ],
    "paths": {
        "/events": {
            "get": {
                "tags": ["Events"],
                "summary": "List events for an academic year",
                "parameters": [
                    {"name": "year", "in": "query", "type": "integer"},
                    {"name": "term", "in": "query", "type": "integer"},
                    {"name": "week", "in": "query", "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "post": {
                "tags": ["Events"],
                "summary": "Create event",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/CreateEventRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "Duplicate slug in the target week"},
                    "502": {"description": "Week could not be resolved"}
                }
            }
        },
        "/events/batch": {
            "post": {
                "tags": ["Events"],
                "summary": "Create one event per start time",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/BatchCreateEventRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/events/upcoming": {
            "get": {
                "tags": ["Events"],
                "summary": "List events from the start of the current week onwards",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/events/previous": {
            "get": {
                "tags": ["Events"],
                "summary": "List events before the current week",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/events/export": {
            "get": {
                "tags": ["Events"],
                "summary": "Export a week range as CSV or PDF",
                "parameters": [
                    {"name": "year", "in": "query", "type": "integer", "required": true},
                    {"name": "term", "in": "query", "type": "integer", "required": true},
                    {"name": "from_week", "in": "query", "type": "integer", "required": true},
                    {"name": "to_week", "in": "query", "type": "integer", "required": true},
                    {"name": "format", "in": "query", "type": "string", "enum": ["csv", "pdf"]}
                ],
                "responses": {
                    "200": {"description": "Rendered document"}
                }
            }
        },
        "/events/{id}": {
            "get": {
                "tags": ["Events"],
                "summary": "Fetch a single event",
                "parameters": [
                    {"name": "id", "in": "path", "type": "string", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Not found"}
                }
            },
            "patch": {
                "tags": ["Events"],
                "summary": "Partially update an event",
                "parameters": [
                    {"name": "id", "in": "path", "type": "string", "required": true},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/UpdateEventRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "delete": {
                "tags": ["Events"],
                "summary": "Delete an event",
                "parameters": [
                    {"name": "id", "in": "path", "type": "string", "required": true}
                ],
                "responses": {
                    "204": {"description": "Deleted"}
                }
            }
        },
        "/weeks/{year}/{term}/{week}/events": {
            "get": {
                "tags": ["Events"],
                "summary": "List the events of one week",
                "parameters": [
                    {"name": "year", "in": "path", "type": "integer", "required": true},
                    {"name": "term", "in": "path", "type": "integer", "required": true},
                    {"name": "week", "in": "path", "type": "integer", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/weeks/{year}/{term}/{week}/events/{slug}": {
            "get": {
                "tags": ["Events"],
                "summary": "Fetch an event by its week address and slug",
                "parameters": [
                    {"name": "year", "in": "path", "type": "integer", "required": true},
                    {"name": "term", "in": "path", "type": "integer", "required": true},
                    {"name": "week", "in": "path", "type": "integer", "required": true},
                    {"name": "slug", "in": "path", "type": "string", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Not found"}
                }
            }
        },
        "/tags": {
            "get": {
                "tags": ["Tags"],
                "summary": "List all tags",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/tags/{name}/events": {
            "get": {
                "tags": ["Tags"],
                "summary": "List the events carrying a tag",
                "parameters": [
                    {"name": "name", "in": "path", "type": "string", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Not found"}
                }
            }
        },
        "/search": {
            "get": {
                "tags": ["Search"],
                "summary": "Search categories, tags and events",
                "parameters": [
                    {"name": "q", "in": "query", "type": "string", "required": true},
                    {"name": "limit", "in": "query", "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/keys": {
            "get": {
                "tags": ["Keys"],
                "summary": "List API key records",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "post": {
                "tags": ["Keys"],
                "summary": "Mint a new API key",
                "responses": {
                    "201": {"description": "Created; the plaintext key appears exactly once"}
                }
            }
        },
        "/keys/{id}": {
            "delete": {
                "tags": ["Keys"],
                "summary": "Permanently deactivate an API key",
                "parameters": [
                    {"name": "id", "in": "path", "type": "string", "required": true}
                ],
                "responses": {
                    "204": {"description": "Deactivated"}
                }
            }
        },
        "/feed.ics": {
            "get": {
                "tags": ["Feed"],
                "summary": "Subscribe to the published events calendar",
                "produces": ["text/calendar"],
                "responses": {
                    "200": {"description": "iCalendar document"}
                }
            }
        }
    },
    "definitions": {
        "CreateEventRequest": {
            "type": "object",
            "required": ["name", "description", "location", "start_time"],
            "properties": {
                "name": {"type": "string"},
                "description": {"type": "string", "description": "Markdown"},
                "draft": {"type": "boolean"},
                "location": {"type": "string"},
                "location_url": {"type": "string"},
                "icon": {"type": "string"},
                "colour": {"type": "string", "description": "Palette name or hex code"},
                "start_time": {"type": "string", "example": "2025-01-29T18:00"},
                "end_time": {"type": "string", "example": "2025-01-29T20:00"},
                "duration": {"type": "string", "example": "0:2:30"},
                "tags": {"type": "array", "items": {"type": "string"}}
            }
        },
        "BatchCreateEventRequest": {
            "type": "object",
            "required": ["name", "description", "location", "start_times"],
            "properties": {
                "name": {"type": "string"},
                "description": {"type": "string"},
                "draft": {"type": "boolean"},
                "location": {"type": "string"},
                "location_url": {"type": "string"},
                "icon": {"type": "string"},
                "colour": {"type": "string"},
                "start_times": {"type": "array", "items": {"type": "string"}},
                "end_times": {"type": "array", "items": {"type": "string"}},
                "duration": {"type": "string"},
                "tags": {"type": "array", "items": {"type": "string"}}
            }
        },
        "UpdateEventRequest": {
            "type": "object",
            "description": "All fields optional; nullable fields accept null to clear",
            "properties": {
                "name": {"type": "string"},
                "description": {"type": "string"},
                "draft": {"type": "boolean"},
                "location": {"type": "string"},
                "location_url": {"type": "string"},
                "icon": {"type": "string"},
                "colour": {"type": "string"},
                "start_time": {"type": "string"},
                "end_time": {"type": "string"},
                "duration": {"type": "string"},
                "tags": {"type": "array", "items": {"type": "string"}}
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
                "pagination": {"type": "object"}
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
