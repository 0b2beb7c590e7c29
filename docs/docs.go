// Package docs registers the OpenAPI document served at /swagger.
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
        "/extractions": {
            "get": {
                "produces": ["application/json"],
                "tags": ["extractions"],
                "summary": "List submitted documents",
                "parameters": [
                    {"type": "integer", "default": 0, "description": "Offset for pagination", "name": "offset", "in": "query"},
                    {"type": "integer", "default": 20, "description": "Limit for pagination (max 100)", "name": "limit", "in": "query"}
                ],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/handler.Response"}}}
            },
            "post": {
                "description": "Upload a document (PDF, image, e-mail, text) or paste text and extract the quote fields",
                "consumes": ["multipart/form-data"],
                "produces": ["application/json"],
                "tags": ["extractions"],
                "summary": "Submit a quote request",
                "parameters": [
                    {"type": "file", "description": "Document to extract", "name": "file", "in": "formData"},
                    {"type": "string", "description": "Message text", "name": "text", "in": "formData"},
                    {"type": "string", "description": "Channel (email, image, pdf, chat, text)", "name": "channel", "in": "formData"},
                    {"type": "string", "description": "Company to use when none is stated", "name": "preferred_company", "in": "formData"},
                    {"type": "boolean", "description": "Prefer preferred_company over extracted values", "name": "override_company", "in": "formData"},
                    {"type": "string", "description": "ISO-3166 alpha-2 country used when none is found", "name": "default_country", "in": "formData"},
                    {"type": "string", "description": "Locale for casing rules", "name": "locale", "in": "formData"},
                    {"type": "boolean", "description": "Queue instead of extracting synchronously", "name": "async", "in": "formData"}
                ],
                "responses": {
                    "201": {"description": "Extraction finished", "schema": {"$ref": "#/definitions/handler.Response"}},
                    "202": {"description": "Document queued", "schema": {"$ref": "#/definitions/handler.Response"}},
                    "400": {"description": "Missing input or unsupported type", "schema": {"$ref": "#/definitions/handler.ErrorResponseBody"}},
                    "409": {"description": "Extraction in progress", "schema": {"$ref": "#/definitions/handler.ErrorResponseBody"}},
                    "413": {"description": "File too large", "schema": {"$ref": "#/definitions/handler.ErrorResponseBody"}}
                }
            }
        },
        "/extractions/{id}": {
            "get": {
                "description": "Stored document, latest extraction result and mapped payload",
                "produces": ["application/json"],
                "tags": ["extractions"],
                "summary": "Get an extraction",
                "parameters": [{"type": "string", "description": "Document ID", "name": "id", "in": "path", "required": true}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handler.Response"}},
                    "400": {"description": "Invalid ID", "schema": {"$ref": "#/definitions/handler.ErrorResponseBody"}},
                    "404": {"description": "Not found", "schema": {"$ref": "#/definitions/handler.ErrorResponseBody"}}
                }
            }
        },
        "/extractions/{id}/retry": {
            "post": {
                "description": "Re-extracts a stored document. Only one extraction per document runs at a time.",
                "produces": ["application/json"],
                "tags": ["extractions"],
                "summary": "Re-run extraction",
                "parameters": [{"type": "string", "description": "Document ID", "name": "id", "in": "path", "required": true}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handler.Response"}},
                    "404": {"description": "Not found", "schema": {"$ref": "#/definitions/handler.ErrorResponseBody"}},
                    "409": {"description": "Extraction in progress", "schema": {"$ref": "#/definitions/handler.ErrorResponseBody"}}
                }
            }
        },
        "/exports/payloads.csv": {
            "get": {
                "description": "Streams every stored mapped payload as a CSV file",
                "produces": ["text/csv"],
                "tags": ["exports"],
                "summary": "Export payloads as CSV",
                "responses": {
                    "200": {"description": "CSV file", "schema": {"type": "file"}},
                    "500": {"description": "Export failed", "schema": {"$ref": "#/definitions/handler.ErrorResponseBody"}}
                }
            }
        }
    },
    "definitions": {
        "handler.APIError": {
            "type": "object",
            "properties": {"code": {"type": "string"}, "message": {"type": "string"}}
        },
        "handler.ErrorResponseBody": {
            "type": "object",
            "properties": {
                "error": {"$ref": "#/definitions/handler.APIError"},
                "success": {"type": "boolean", "example": false}
            }
        },
        "handler.PagMeta": {
            "type": "object",
            "properties": {"limit": {"type": "integer"}, "offset": {"type": "integer"}, "total": {"type": "integer"}}
        },
        "handler.Response": {
            "type": "object",
            "properties": {
                "data": {},
                "meta": {"$ref": "#/definitions/handler.PagMeta"},
                "success": {"type": "boolean", "example": true}
            }
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/api/v1",
	Schemes:          []string{},
	Title:            "Freightdesk API",
	Description:      "Extracts structured transport quote requests from e-mails, chat messages, scans and photos.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
