package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "Motabea Scheduling API",
        "description": "Substitute coverage allocation and timetable conflict resolution",
        "version": "0.1.0"
    },
    "basePath": "/api/v1",
    "schemes": [
        "http"
    ],
    "tags": [
        {"name": "Coverage", "description": "Substitute coverage allocation"},
        {"name": "Timetable", "description": "Weekly board, transfers and regeneration"}
    ],
    "paths": {
        "/coverage/allocations": {
            "post": {
                "tags": ["Coverage"],
                "summary": "Allocate substitute coverage for a set of vacant periods",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/AllocateCoverageRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/coverage/allocations/{id}": {
            "get": {
                "tags": ["Coverage"],
                "summary": "Fetch a pending coverage batch",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Batch not found"}
                }
            }
        },
        "/coverage/allocations/assign": {
            "post": {
                "tags": ["Coverage"],
                "summary": "Manually assign a period in a pending batch",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/ManualAssignmentRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/coverage/allocations/hide": {
            "post": {
                "tags": ["Coverage"],
                "summary": "Toggle visibility of an assignment in a pending batch",
                "responses": {
                    "204": {"description": "No Content"}
                }
            }
        },
        "/coverage/allocations/confirm": {
            "post": {
                "tags": ["Coverage"],
                "summary": "Persist a pending coverage batch",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/ConfirmCoverageRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/coverage/allocations/{id}/export/csv": {
            "get": {
                "tags": ["Coverage"],
                "summary": "Export a pending batch as a CSV duty roster",
                "produces": ["text/csv"],
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "CSV document"}
                }
            }
        },
        "/coverage/allocations/{id}/export/pdf": {
            "get": {
                "tags": ["Coverage"],
                "summary": "Export a pending batch as a PDF duty roster",
                "produces": ["application/pdf"],
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "PDF document"}
                }
            }
        },
        "/timetable/board": {
            "get": {
                "tags": ["Timetable"],
                "summary": "Render the weekly timetable board",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/timetable/transfers": {
            "post": {
                "tags": ["Timetable"],
                "summary": "Request a session transfer to a new teacher and slot",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/TransferRequest"}}
                ],
                "responses": {
                    "200": {"description": "Applied or awaiting confirmation", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Session not found"},
                    "409": {"description": "Session locked or another transfer pending"}
                }
            }
        },
        "/timetable/transfers/confirm": {
            "post": {
                "tags": ["Timetable"],
                "summary": "Confirm the transfer awaiting conflict review",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "412": {"description": "No transfer awaiting confirmation"}
                }
            }
        },
        "/timetable/transfers/decline": {
            "post": {
                "tags": ["Timetable"],
                "summary": "Decline the transfer awaiting conflict review",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "412": {"description": "No transfer awaiting confirmation"}
                }
            }
        },
        "/timetable/regenerate": {
            "post": {
                "tags": ["Timetable"],
                "summary": "Rebuild a class week from subject loads",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/RegenerateRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Class not found"}
                }
            }
        },
        "/timetable/undo": {
            "post": {
                "tags": ["Timetable"],
                "summary": "Restore the timetable captured before the last regeneration",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "412": {"description": "Nothing to undo"}
                }
            }
        },
        "/timetable/history": {
            "get": {
                "tags": ["Timetable"],
                "summary": "List transfer operation records, newest first",
                "parameters": [
                    {"name": "limit", "in": "query", "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "delete": {
                "tags": ["Timetable"],
                "summary": "Clear the transfer operation log",
                "responses": {
                    "204": {"description": "No Content"}
                }
            }
        },
        "/timetable/export/csv": {
            "get": {
                "tags": ["Timetable"],
                "summary": "Export the timetable board as CSV",
                "produces": ["text/csv"],
                "responses": {
                    "200": {"description": "CSV document"}
                }
            }
        },
        "/timetable/export/pdf": {
            "get": {
                "tags": ["Timetable"],
                "summary": "Export the timetable board as PDF",
                "produces": ["application/pdf"],
                "responses": {
                    "200": {"description": "PDF document"}
                }
            }
        }
    },
    "definitions": {
        "AllocateCoverageRequest": {
            "type": "object",
            "properties": {
                "requests": {"type": "array", "items": {"type": "object"}},
                "strategy": {"type": "string", "enum": ["ROUND_ROBIN", "GREEDY_MIN_LOAD"]}
            }
        },
        "ManualAssignmentRequest": {
            "type": "object",
            "properties": {
                "batchId": {"type": "string"},
                "period": {"type": "integer"},
                "assigneeId": {"type": "string"},
                "name": {"type": "string"}
            }
        },
        "ConfirmCoverageRequest": {
            "type": "object",
            "properties": {
                "batchId": {"type": "string"}
            }
        },
        "TransferRequest": {
            "type": "object",
            "properties": {
                "sessionId": {"type": "string"},
                "teacherId": {"type": "string"},
                "dayOfWeek": {"type": "integer"},
                "period": {"type": "integer"}
            }
        },
        "RegenerateRequest": {
            "type": "object",
            "properties": {
                "classId": {"type": "string"},
                "loads": {"type": "array", "items": {"type": "object"}}
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
