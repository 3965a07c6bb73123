package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "CrewLink API",
        "description": "Crew directory with employment verification workflow",
        "version": "1.0.0"
    },
    "basePath": "/api/v1",
    "schemes": [
        "http"
    ],
    "securityDefinitions": {
        "BearerAuth": {"type": "apiKey", "name": "Authorization", "in": "header"}
    },
    "tags": [
        {"name": "Auth", "description": "Authentication"},
        {"name": "Profiles", "description": "Crew directory profiles"},
        {"name": "Employment", "description": "Employment record ledger and verification"},
        {"name": "Contacts", "description": "Contact detail access requests"},
        {"name": "Stats", "description": "Dashboard counters"}
    ],
    "paths": {
        "/auth/login": {
            "post": {
                "tags": ["Auth"],
                "summary": "Authenticate with email and password",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/LoginRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "401": {"description": "Invalid credentials", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/profiles": {
            "get": {
                "tags": ["Profiles"],
                "summary": "List profiles",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "role", "in": "query", "type": "string"},
                    {"name": "page", "in": "query", "type": "integer"},
                    {"name": "page_size", "in": "query", "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "post": {
                "tags": ["Profiles"],
                "summary": "Register a new profile",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/RegisterProfileRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "Email already registered", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/profiles/{id}": {
            "get": {
                "tags": ["Profiles"],
                "summary": "Fetch a profile by id",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Not found", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/profiles/{id}/availability": {
            "patch": {
                "tags": ["Profiles"],
                "summary": "Toggle a seafarer's availability",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/SetAvailabilityRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "Availability locked while onboard", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/employment-records": {
            "get": {
                "tags": ["Employment"],
                "summary": "List ledger entries in submission order",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "seafarer_id", "in": "query", "type": "string"},
                    {"name": "limit", "in": "query", "type": "integer"},
                    {"name": "offset", "in": "query", "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "post": {
                "tags": ["Employment"],
                "summary": "Report a sign-on or sign-off event",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/SubmitEmploymentRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Seafarer not found", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/employment-records/pending": {
            "get": {
                "tags": ["Employment"],
                "summary": "List the pending verification queue",
                "security": [{"BearerAuth": []}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/employment-records/export": {
            "get": {
                "tags": ["Employment"],
                "summary": "Export the ledger as CSV",
                "security": [{"BearerAuth": []}],
                "produces": ["text/csv"],
                "responses": {
                    "200": {"description": "CSV payload"}
                }
            }
        },
        "/employment-records/{id}/decision": {
            "post": {
                "tags": ["Employment"],
                "summary": "Verify or flag a pending employment record",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/DecideEmploymentRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Not found", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "Already decided", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/contact-requests": {
            "get": {
                "tags": ["Contacts"],
                "summary": "List contact requests visible to the caller",
                "security": [{"BearerAuth": []}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "post": {
                "tags": ["Contacts"],
                "summary": "Request access to a seafarer's contact details",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/CreateContactRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "Duplicate pending request", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/contact-requests/{id}/review": {
            "post": {
                "tags": ["Contacts"],
                "summary": "Approve or reject a pending contact request",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/ReviewContactRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "Already decided", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/stats": {
            "get": {
                "tags": ["Stats"],
                "summary": "Fetch system-wide dashboard counters",
                "security": [{"BearerAuth": []}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        }
    },
    "definitions": {
        "LoginRequest": {
            "type": "object",
            "required": ["email", "password"],
            "properties": {
                "email": {"type": "string"},
                "password": {"type": "string"}
            }
        },
        "RegisterProfileRequest": {
            "type": "object",
            "required": ["role", "full_name", "email", "password"],
            "properties": {
                "role": {"type": "string", "enum": ["seafarer", "agent", "admin", "port_officer"]},
                "full_name": {"type": "string"},
                "email": {"type": "string"},
                "password": {"type": "string"},
                "rank": {"type": "string"},
                "coc": {"type": "string"},
                "ic_passport": {"type": "string"},
                "sid": {"type": "string"},
                "phone": {"type": "string"},
                "nationality": {"type": "string"},
                "years_of_experience": {"type": "integer"},
                "ship_type_experience": {"type": "array", "items": {"type": "string"}},
                "cert_basic_training_expiry": {"type": "string"},
                "cert_adv_fire_fighting_expiry": {"type": "string"},
                "cert_survival_craft_expiry": {"type": "string"}
            }
        },
        "SetAvailabilityRequest": {
            "type": "object",
            "required": ["availability_status"],
            "properties": {
                "availability_status": {"type": "string", "enum": ["Available", "Not Available"]}
            }
        },
        "SubmitEmploymentRequest": {
            "type": "object",
            "required": ["seafarer_id", "event_type", "vessel_name", "port", "event_date", "source"],
            "properties": {
                "seafarer_id": {"type": "string"},
                "event_type": {"type": "string", "enum": ["Sign On", "Sign Off"]},
                "vessel_name": {"type": "string"},
                "port": {"type": "string"},
                "event_date": {"type": "string", "format": "date"},
                "source": {"type": "string", "enum": ["Seafarer", "Shipowner", "Port Office"]}
            }
        },
        "DecideEmploymentRequest": {
            "type": "object",
            "required": ["outcome"],
            "properties": {
                "outcome": {"type": "string", "enum": ["Verified", "Flagged"]},
                "reason": {"type": "string"}
            }
        },
        "CreateContactRequest": {
            "type": "object",
            "required": ["seafarer_id"],
            "properties": {
                "seafarer_id": {"type": "string"}
            }
        },
        "ReviewContactRequest": {
            "type": "object",
            "required": ["outcome"],
            "properties": {
                "outcome": {"type": "string", "enum": ["approved", "rejected"]}
            }
        },
        "APIError": {
            "type": "object",
            "properties": {
                "code": {"type": "string"},
                "message": {"type": "string"}
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
