package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "Flock API",
        "description": "Congregation attendance and engagement service",
        "version": "1.0.0"
    },
    "basePath": "/api/v1",
    "schemes": [
        "http",
        "https"
    ],
    "tags": [
        {"name": "Attendance", "description": "Check-in engine"},
        {"name": "Links", "description": "Shareable check-in links"},
        {"name": "Analytics", "description": "Engagement statistics and absences"},
        {"name": "Settings", "description": "Live-tunable attendance settings"},
        {"name": "Services", "description": "Service calendar"},
        {"name": "Members", "description": "Read-only member directory"}
    ],
    "paths": {
        "/attendance/checkin": {
            "post": {
                "tags": ["Attendance"],
                "summary": "Check in to a service",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/SelfCheckInRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "400": {"description": "Validation error or duplicate attendance"},
                    "403": {"description": "Self check-in disabled"}
                }
            }
        },
        "/attendance/manual": {
            "post": {
                "tags": ["Attendance"],
                "summary": "Record attendance for another member",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/ManualCheckInRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "400": {"description": "Validation error or duplicate attendance"},
                    "404": {"description": "Target member not found"}
                }
            }
        },
        "/attendance/online": {
            "post": {
                "tags": ["Attendance"],
                "summary": "Report an online watch session",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/OnlineCheckInRequest"}}
                ],
                "responses": {
                    "200": {"description": "Session processed", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/attendance/me": {
            "get": {
                "tags": ["Attendance"],
                "summary": "List my attendance history",
                "parameters": [
                    {"name": "date_from", "in": "query", "type": "string"},
                    {"name": "date_to", "in": "query", "type": "string"},
                    {"name": "page", "in": "query", "type": "integer"},
                    {"name": "page_size", "in": "query", "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/attendance": {
            "get": {
                "tags": ["Analytics"],
                "summary": "List attendance records",
                "parameters": [
                    {"name": "member_id", "in": "query", "type": "string"},
                    {"name": "service_type", "in": "query", "type": "string"},
                    {"name": "date_from", "in": "query", "type": "string"},
                    {"name": "date_to", "in": "query", "type": "string"},
                    {"name": "page", "in": "query", "type": "integer"},
                    {"name": "page_size", "in": "query", "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/attendance/analytics": {
            "get": {
                "tags": ["Analytics"],
                "summary": "Aggregate attendance statistics",
                "parameters": [
                    {"name": "start_date", "in": "query", "type": "string", "required": true},
                    {"name": "end_date", "in": "query", "type": "string", "required": true},
                    {"name": "service_type", "in": "query", "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/attendance/absences": {
            "get": {
                "tags": ["Analytics"],
                "summary": "List members with absence streaks",
                "parameters": [
                    {"name": "threshold", "in": "query", "type": "integer"},
                    {"name": "window", "in": "query", "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/attendance/follow-ups": {
            "post": {
                "tags": ["Analytics"],
                "summary": "Dispatch follow-ups for absent members",
                "parameters": [
                    {"name": "threshold", "in": "query", "type": "integer"},
                    {"name": "window", "in": "query", "type": "integer"}
                ],
                "responses": {
                    "202": {"description": "Accepted", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/attendance/export": {
            "get": {
                "tags": ["Analytics"],
                "summary": "Export attendance or absence report",
                "parameters": [
                    {"name": "format", "in": "query", "type": "string", "enum": ["csv", "pdf"]},
                    {"name": "report", "in": "query", "type": "string", "enum": ["attendance", "absences"]}
                ],
                "produces": ["application/octet-stream"],
                "responses": {
                    "200": {"description": "File download"}
                }
            }
        },
        "/attendance/links": {
            "get": {
                "tags": ["Links"],
                "summary": "List check-in links",
                "parameters": [
                    {"name": "active", "in": "query", "type": "boolean"},
                    {"name": "limit", "in": "query", "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "post": {
                "tags": ["Links"],
                "summary": "Issue a check-in link",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/IssueLinkRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/attendance/links/{token}": {
            "get": {
                "tags": ["Links"],
                "summary": "Resolve a link token",
                "parameters": [
                    {"name": "token", "in": "path", "type": "string", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "400": {"description": "Link expired or deactivated"},
                    "404": {"description": "Link not found"}
                }
            },
            "delete": {
                "tags": ["Links"],
                "summary": "Deactivate a check-in link",
                "parameters": [
                    {"name": "token", "in": "path", "type": "string", "required": true, "description": "Link id"}
                ],
                "responses": {
                    "204": {"description": "Deactivated"},
                    "404": {"description": "Link not found"}
                }
            }
        },
        "/attendance/links/{token}/checkin": {
            "post": {
                "tags": ["Attendance"],
                "summary": "Check in through a shared link",
                "parameters": [
                    {"name": "token", "in": "path", "type": "string", "required": true}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "400": {"description": "Duplicate attendance, link expired or deactivated"},
                    "404": {"description": "Link not found"}
                }
            }
        },
        "/attendance/settings": {
            "get": {
                "tags": ["Settings"],
                "summary": "Get attendance settings",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "put": {
                "tags": ["Settings"],
                "summary": "Update attendance settings",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/UpdateSettingsRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/services": {
            "get": {
                "tags": ["Services"],
                "summary": "List service occurrences",
                "parameters": [
                    {"name": "service_type", "in": "query", "type": "string"},
                    {"name": "date_from", "in": "query", "type": "string"},
                    {"name": "date_to", "in": "query", "type": "string"},
                    {"name": "limit", "in": "query", "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "post": {
                "tags": ["Services"],
                "summary": "Schedule a service occurrence",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/ScheduleServiceRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/members": {
            "get": {
                "tags": ["Members"],
                "summary": "List members",
                "parameters": [
                    {"name": "search", "in": "query", "type": "string"},
                    {"name": "role", "in": "query", "type": "string"},
                    {"name": "active", "in": "query", "type": "boolean"},
                    {"name": "page", "in": "query", "type": "integer"},
                    {"name": "page_size", "in": "query", "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/members/{id}": {
            "get": {
                "tags": ["Members"],
                "summary": "Get member by id",
                "parameters": [
                    {"name": "id", "in": "path", "type": "string", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Member not found"}
                }
            }
        }
    },
    "definitions": {
        "SelfCheckInRequest": {
            "type": "object",
            "required": ["service_type", "service_name", "service_date"],
            "properties": {
                "service_type": {"type": "string", "enum": ["SUNDAY", "MIDWEEK", "SPECIAL", "ONLINE_LIVE", "ONLINE_REPLAY"]},
                "service_event_id": {"type": "string"},
                "service_name": {"type": "string"},
                "service_date": {"type": "string", "example": "2026-08-23"},
                "notes": {"type": "string"}
            }
        },
        "ManualCheckInRequest": {
            "type": "object",
            "required": ["target_member_id", "service_type", "service_name", "service_date"],
            "properties": {
                "target_member_id": {"type": "string"},
                "service_type": {"type": "string"},
                "service_event_id": {"type": "string"},
                "service_name": {"type": "string"},
                "service_date": {"type": "string"},
                "notes": {"type": "string"}
            }
        },
        "OnlineCheckInRequest": {
            "type": "object",
            "required": ["member_id", "service_name", "service_date"],
            "properties": {
                "member_id": {"type": "string"},
                "service_event_id": {"type": "string"},
                "service_name": {"type": "string"},
                "service_date": {"type": "string"},
                "watch_duration": {"type": "integer", "description": "Seconds watched"},
                "is_replay": {"type": "boolean"}
            }
        },
        "IssueLinkRequest": {
            "type": "object",
            "required": ["service_type", "service_name", "service_date"],
            "properties": {
                "service_type": {"type": "string"},
                "service_event_id": {"type": "string"},
                "service_name": {"type": "string"},
                "service_date": {"type": "string"},
                "expires_at": {"type": "string", "format": "date-time"}
            }
        },
        "UpdateSettingsRequest": {
            "type": "object",
            "properties": {
                "online_watch_threshold_minutes": {"type": "integer", "minimum": 1, "maximum": 720},
                "enable_online_detection": {"type": "boolean"},
                "enable_self_checkin": {"type": "boolean"},
                "enable_qr_checkin": {"type": "boolean"}
            }
        },
        "ScheduleServiceRequest": {
            "type": "object",
            "required": ["service_type", "name", "service_date"],
            "properties": {
                "service_type": {"type": "string"},
                "name": {"type": "string"},
                "service_date": {"type": "string"},
                "starts_at": {"type": "string", "format": "date-time"}
            }
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
                "data": {"type": "object"},
                "error": {"$ref": "#/definitions/APIError"},
                "pagination": {"$ref": "#/definitions/Pagination"},
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
