package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "Department Timetable API",
        "description": "Session materialization, automatic placement and manual placement for a departmental timetable.",
        "version": "1.0.0"
    },
    "basePath": "/",
    "schemes": [
        "http"
    ],
    "tags": [
        {"name": "Sessions", "description": "Session materialization and placement"},
        {"name": "Operations", "description": "Health, readiness and metrics"}
    ],
    "paths": {
        "/health": {
            "get": {
                "tags": ["Operations"],
                "summary": "Health check",
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/ready": {
            "get": {
                "tags": ["Operations"],
                "summary": "Readiness check",
                "responses": {
                    "200": {"description": "Ready"},
                    "503": {"description": "Database unreachable", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/metrics": {
            "get": {
                "tags": ["Operations"],
                "summary": "Prometheus metrics",
                "produces": ["text/plain"],
                "responses": {"200": {"description": "Prometheus exposition"}}
            }
        },
        "/api/v1/sessions/materialize": {
            "post": {
                "tags": ["Sessions"],
                "summary": "Materialize sessions from subject split patterns",
                "description": "Idempotent. Fixed subjects are pinned; other placements are preserved.",
                "responses": {
                    "200": {"description": "Summary", "schema": {"$ref": "#/definitions/MaterializeEnvelope"}},
                    "409": {"description": "Another pass is in progress", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "503": {"description": "Entity store unavailable", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/api/v1/sessions/auto-assign": {
            "post": {
                "tags": ["Sessions"],
                "summary": "Run the auto-assign pass",
                "description": "Places floating sessions in priority order. Unplaced sessions are reported, not an error.",
                "responses": {
                    "200": {"description": "Summary", "schema": {"$ref": "#/definitions/AutoAssignEnvelope"}},
                    "409": {"description": "Another pass is in progress", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "503": {"description": "Entity store unavailable", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/api/v1/sessions/auto-assign/jobs": {
            "post": {
                "tags": ["Sessions"],
                "summary": "Queue an auto-assign pass",
                "responses": {
                    "202": {"description": "Queued", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "Queue is full", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/api/v1/sessions/auto-assign/jobs/{id}": {
            "get": {
                "tags": ["Sessions"],
                "summary": "Get a queued auto-assign pass",
                "parameters": [{"name": "id", "in": "path", "required": true, "type": "string"}],
                "responses": {
                    "200": {"description": "Job", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Unknown or expired job", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/api/v1/sessions/{id}/placement/check": {
            "post": {
                "tags": ["Sessions"],
                "summary": "Evaluate a manual placement",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/PlacementRequest"}}
                ],
                "responses": {
                    "200": {"description": "Verdict", "schema": {"$ref": "#/definitions/PlacementEnvelope"}},
                    "400": {"description": "Invalid payload", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Session not found", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/api/v1/sessions/{id}/placement": {
            "put": {
                "tags": ["Sessions"],
                "summary": "Place a session manually",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/PlacementRequest"}}
                ],
                "responses": {
                    "200": {"description": "Placed", "schema": {"$ref": "#/definitions/PlacementEnvelope"}},
                    "409": {"description": "Another pass is in progress", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "422": {"description": "Hard rule violated", "schema": {"$ref": "#/definitions/PlacementEnvelope"}},
                    "428": {"description": "Soft constraint needs overrideSoft", "schema": {"$ref": "#/definitions/PlacementEnvelope"}}
                }
            },
            "delete": {
                "tags": ["Sessions"],
                "summary": "Unplace a session",
                "parameters": [{"name": "id", "in": "path", "required": true, "type": "string"}],
                "responses": {
                    "204": {"description": "Unplaced"},
                    "404": {"description": "Session not found", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "422": {"description": "Session belongs to a fixed subject", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/api/v1/sessions/placements": {
            "delete": {
                "tags": ["Sessions"],
                "summary": "Unplace every non-fixed session",
                "responses": {
                    "200": {"description": "Cleared count", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "Another pass is in progress", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        }
    },
    "definitions": {
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
        },
        "SubjectIssue": {
            "type": "object",
            "properties": {
                "subjectId": {"type": "string"},
                "entityId": {"type": "string"},
                "kind": {"type": "string", "enum": ["VALIDATION", "NOT_FOUND"]},
                "message": {"type": "string"}
            }
        },
        "MaterializeEnvelope": {
            "type": "object",
            "properties": {
                "data": {
                    "type": "object",
                    "properties": {
                        "created": {"type": "integer"},
                        "updated": {"type": "integer"},
                        "skipped": {"type": "integer"},
                        "deleted": {"type": "integer"},
                        "rejected": {"type": "integer"},
                        "issues": {"type": "array", "items": {"$ref": "#/definitions/SubjectIssue"}}
                    }
                }
            }
        },
        "AutoAssignEnvelope": {
            "type": "object",
            "properties": {
                "data": {
                    "type": "object",
                    "properties": {
                        "placed": {"type": "integer"},
                        "unplaced": {"type": "integer"},
                        "unplacedIds": {"type": "array", "items": {"type": "string"}},
                        "cancelled": {"type": "boolean"},
                        "durationMs": {"type": "integer"}
                    }
                },
                "meta": {"type": "object", "properties": {"complete": {"type": "boolean"}}}
            }
        },
        "PlacementRequest": {
            "type": "object",
            "required": ["day", "startSlot"],
            "properties": {
                "day": {"type": "string", "enum": ["MON", "TUE", "WED", "THU", "FRI", "SAT", "SUN"]},
                "startSlot": {"type": "integer", "minimum": 0, "maximum": 13},
                "roomId": {"type": "string"},
                "overrideSoft": {"type": "boolean"}
            }
        },
        "PlacementEnvelope": {
            "type": "object",
            "properties": {
                "data": {
                    "type": "object",
                    "properties": {
                        "sessionId": {"type": "string"},
                        "allowed": {"type": "boolean"},
                        "reasons": {"type": "array", "items": {"type": "string"}},
                        "softSlots": {"type": "array", "items": {"type": "integer"}},
                        "overrideRequired": {"type": "boolean"},
                        "busyInstructors": {"type": "array", "items": {"type": "string"}},
                        "rooms": {"type": "array", "items": {"type": "object"}}
                    }
                },
                "error": {"$ref": "#/definitions/APIError"}
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
