package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "Escuela Gastro Procurement API",
        "description": "Weekly ingredient procurement workflow for the culinary school",
        "version": "1.0.0"
    },
    "basePath": "/api/v1",
    "schemes": [
        "http"
    ],
    "tags": [
        {"name": "Auth", "description": "Authentication and session management"},
        {"name": "Requests", "description": "Teacher ingredient requests"},
        {"name": "Procurement", "description": "Weekly purchase pipeline"},
        {"name": "Orders", "description": "Order history"},
        {"name": "Inventory", "description": "Product catalogue and stock"},
        {"name": "Suppliers", "description": "Supplier catalogue and price lists"},
        {"name": "Export", "description": "Purchase order documents"},
        {"name": "Configuration", "description": "Runtime configuration"}
    ],
    "paths": {
        "/auth/login": {
            "post": {
                "tags": ["Auth"],
                "summary": "Login with email and password",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/LoginRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "401": {"description": "Invalid credentials"}
                }
            }
        },
        "/requests": {
            "get": {
                "tags": ["Requests"],
                "summary": "List requests visible to the caller",
                "parameters": [
                    {"name": "state", "in": "query", "type": "string"},
                    {"name": "week", "in": "query", "type": "integer"},
                    {"name": "subjectId", "in": "query", "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "post": {
                "tags": ["Requests"],
                "summary": "Submit an ingredient request",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/CreateRequestRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "422": {"description": "Validation failure"}
                }
            }
        },
        "/requests/{id}": {
            "get": {
                "tags": ["Requests"],
                "summary": "Get one request",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Not found"}
                }
            },
            "put": {
                "tags": ["Requests"],
                "summary": "Edit an owned request (reverts it to PENDING)",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/CreateRequestRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "Request changed concurrently"}
                }
            },
            "delete": {
                "tags": ["Requests"],
                "summary": "Delete a request",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "204": {"description": "Deleted"},
                    "409": {"description": "Only pending requests can be deleted by their owner"}
                }
            }
        },
        "/requests/{id}/review": {
            "post": {
                "tags": ["Requests"],
                "summary": "Review a pending request",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/ReviewRequestRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "Already resolved by another reviewer"}
                }
            }
        },
        "/procurement/status": {
            "get": {
                "tags": ["Procurement"],
                "summary": "Current pipeline position with persisted stage payloads",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/procurement/start": {
            "post": {
                "tags": ["Procurement"],
                "summary": "Open a procurement run for one week",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/StartProcessRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "Another run is active"}
                }
            }
        },
        "/procurement/terminate-collection": {
            "post": {
                "tags": ["Procurement"],
                "summary": "Close the collection window and compute reconciliation",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "412": {"description": "Pending requests remain"}
                }
            }
        },
        "/procurement/accept-reconciliation": {
            "post": {
                "tags": ["Procurement"],
                "summary": "Approve reconciliation and request supplier quotes",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/procurement/accept-quotes": {
            "post": {
                "tags": ["Procurement"],
                "summary": "Approve supplier selections",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/procurement/finalize": {
            "post": {
                "tags": ["Procurement"],
                "summary": "Commit the final order and close the run",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/procurement/cancel": {
            "post": {
                "tags": ["Procurement"],
                "summary": "Cancel the in-flight run",
                "responses": {
                    "204": {"description": "Cancelled"}
                }
            }
        },
        "/orders": {
            "get": {
                "tags": ["Orders"],
                "summary": "List past orders",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/orders/{id}/export": {
            "post": {
                "tags": ["Export"],
                "summary": "Render a purchase order as CSV or PDF",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "format", "in": "query", "type": "string", "enum": ["csv", "pdf"]}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "412": {"description": "Order has no finalized lines"}
                }
            }
        },
        "/export/{token}": {
            "get": {
                "tags": ["Export"],
                "summary": "Download a generated purchase order",
                "parameters": [
                    {"name": "token", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "File"},
                    "401": {"description": "Link invalid or expired"}
                }
            }
        },
        "/products": {
            "get": {
                "tags": ["Inventory"],
                "summary": "List products",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "post": {
                "tags": ["Inventory"],
                "summary": "Register a product",
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/suppliers": {
            "get": {
                "tags": ["Suppliers"],
                "summary": "List suppliers",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "post": {
                "tags": ["Suppliers"],
                "summary": "Register a supplier",
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        }
    },
    "definitions": {
        "LoginRequest": {
            "type": "object",
            "properties": {
                "email": {"type": "string"},
                "password": {"type": "string"}
            },
            "required": ["email", "password"]
        },
        "RequestLineInput": {
            "type": "object",
            "properties": {
                "productId": {"type": "string"},
                "productName": {"type": "string"},
                "quantity": {"type": "string"},
                "unitOfMeasure": {"type": "string"},
                "isAdditional": {"type": "boolean"}
            },
            "required": ["productId", "productName", "quantity", "unitOfMeasure"]
        },
        "CreateRequestRequest": {
            "type": "object",
            "properties": {
                "subjectId": {"type": "string"},
                "classDate": {"type": "string", "format": "date-time"},
                "weekNumber": {"type": "integer", "minimum": 1, "maximum": 18},
                "lines": {
                    "type": "array",
                    "items": {"$ref": "#/definitions/RequestLineInput"}
                },
                "notes": {"type": "string"}
            },
            "required": ["subjectId", "classDate", "weekNumber", "lines"]
        },
        "ReviewRequestRequest": {
            "type": "object",
            "properties": {
                "decision": {"type": "string", "enum": ["ACCEPT", "ACCEPT_WITH_EDITS", "REJECT"]},
                "rejectReason": {"type": "string"},
                "adminComment": {"type": "string"},
                "lines": {
                    "type": "array",
                    "items": {"$ref": "#/definitions/RequestLineInput"}
                }
            },
            "required": ["decision"]
        },
        "StartProcessRequest": {
            "type": "object",
            "properties": {
                "weekNumber": {"type": "integer", "minimum": 1, "maximum": 18},
                "comment": {"type": "string"}
            },
            "required": ["weekNumber"]
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
