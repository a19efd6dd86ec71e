// Package docs registers the Swagger document served at /swagger/index.html.
// Kept in step with the godoc annotations on the handlers.
package docs

import "github.com/swaggo/swag"

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "paths": {
        "/health": {
            "get": {
                "tags": ["health"],
                "summary": "Database and Redis connectivity",
                "produces": ["application/json"],
                "responses": {
                    "200": {"description": "OK"},
                    "503": {"description": "the database is down; redis outages only report \"degraded\""}
                }
            }
        },
        "/sales": {
            "get": {
                "tags": ["sales"],
                "summary": "List all sales, newest first",
                "produces": ["application/json"],
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "array", "items": {"$ref": "#/definitions/dto.SaleResponse"}}}
                }
            },
            "post": {
                "tags": ["sales"],
                "summary": "Record a sale",
                "description": "Stores the sale and decrements stock for every item whose barcode matches a product, never below zero. Offline replays carrying an already-seen offlineId return the stored sale.",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "parameters": [{"in": "body", "name": "body", "required": true, "schema": {"$ref": "#/definitions/dto.CreateSaleRequest"}}],
                "responses": {
                    "200": {"description": "offlineId already ingested", "schema": {"$ref": "#/definitions/dto.CreateSaleResponse"}},
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/dto.CreateSaleResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/apierror.SaleResult"}},
                    "422": {"description": "Unprocessable Entity", "schema": {"$ref": "#/definitions/apierror.SaleResult"}},
                    "500": {"description": "Internal Server Error", "schema": {"$ref": "#/definitions/apierror.SaleResult"}}
                }
            }
        },
        "/sales/create": {
            "post": {
                "tags": ["sales"],
                "summary": "Record a sale (alias of POST /sales)",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "parameters": [{"in": "body", "name": "body", "required": true, "schema": {"$ref": "#/definitions/dto.CreateSaleRequest"}}],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/dto.CreateSaleResponse"}}
                }
            }
        },
        "/sales/recent": {
            "get": {
                "tags": ["sales"],
                "summary": "Recent sales",
                "produces": ["application/json"],
                "parameters": [
                    {"type": "integer", "description": "page size (default 10)", "name": "limit", "in": "query"},
                    {"type": "integer", "description": "1-based page (default 1)", "name": "page", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "array", "items": {"$ref": "#/definitions/dto.RecentSale"}}}
                }
            }
        },
        "/sales/summary/{date}": {
            "get": {
                "tags": ["sales"],
                "summary": "Daily sales summary",
                "produces": ["application/json"],
                "parameters": [{"type": "string", "description": "YYYY-MM-DD", "name": "date", "in": "path", "required": true}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/dto.SalesSummary"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/apierror.APIError"}}
                }
            }
        },
        "/sales/{id}": {
            "get": {
                "tags": ["sales"],
                "summary": "Get one sale",
                "produces": ["application/json"],
                "parameters": [{"type": "string", "name": "id", "in": "path", "required": true}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/dto.SaleResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/apierror.APIError"}}
                }
            }
        },
        "/sales/{id}/refund": {
            "post": {
                "tags": ["sales"],
                "summary": "Refund a sale",
                "description": "Marks the sale refunded and restores stock for its items.",
                "produces": ["application/json"],
                "parameters": [{"type": "string", "name": "id", "in": "path", "required": true}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/dto.SaleResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/apierror.APIError"}},
                    "409": {"description": "Conflict", "schema": {"$ref": "#/definitions/apierror.APIError"}}
                }
            }
        },
        "/sales/{id}/receipt": {
            "get": {
                "tags": ["sales"],
                "summary": "Download the PDF receipt of a sale",
                "produces": ["application/pdf"],
                "parameters": [{"type": "string", "name": "id", "in": "path", "required": true}],
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "file"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/apierror.APIError"}}
                }
            }
        },
        "/products": {
            "get": {
                "tags": ["products"],
                "summary": "List products",
                "produces": ["application/json"],
                "parameters": [
                    {"type": "string", "name": "name", "in": "query"},
                    {"type": "string", "name": "category", "in": "query"},
                    {"type": "integer", "name": "page", "in": "query"},
                    {"type": "integer", "name": "limit", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/dto.ProductListResponse"}}
                }
            },
            "post": {
                "tags": ["products"],
                "summary": "Create a product",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "parameters": [{"in": "body", "name": "body", "required": true, "schema": {"$ref": "#/definitions/dto.CreateProductRequest"}}],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/dto.ProductResponse"}},
                    "409": {"description": "Conflict", "schema": {"$ref": "#/definitions/apierror.APIError"}},
                    "422": {"description": "Unprocessable Entity", "schema": {"$ref": "#/definitions/apierror.ValidationError"}}
                }
            }
        },
        "/products/barcode/{barcode}": {
            "get": {
                "tags": ["products"],
                "summary": "Look a product up by barcode",
                "produces": ["application/json"],
                "parameters": [{"type": "string", "name": "barcode", "in": "path", "required": true}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/dto.ProductResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/apierror.APIError"}}
                }
            }
        },
        "/products/low-stock": {
            "get": {
                "tags": ["products"],
                "summary": "Products at or below their low-stock threshold",
                "produces": ["application/json"],
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "array", "items": {"$ref": "#/definitions/dto.ProductResponse"}}}
                }
            }
        },
        "/products/{id}/stock": {
            "patch": {
                "tags": ["products"],
                "summary": "Adjust stock",
                "description": "Applies a signed delta; the result never goes below zero.",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "parameters": [
                    {"type": "string", "name": "id", "in": "path", "required": true},
                    {"in": "body", "name": "body", "required": true, "schema": {"$ref": "#/definitions/dto.AdjustStockRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/dto.ProductResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/apierror.APIError"}}
                }
            }
        },
        "/products/{id}/movements": {
            "get": {
                "tags": ["products"],
                "summary": "Stock movement history of a product",
                "produces": ["application/json"],
                "parameters": [
                    {"type": "string", "name": "id", "in": "path", "required": true},
                    {"type": "integer", "name": "page", "in": "query"},
                    {"type": "integer", "name": "limit", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK"}
                }
            }
        }
    },
    "definitions": {
        "apierror.APIError": {
            "type": "object",
            "properties": {"detail": {"type": "string"}}
        },
        "apierror.ValidationError": {
            "type": "object",
            "properties": {
                "detail": {"type": "string"},
                "fields": {"type": "object", "additionalProperties": {"type": "string"}}
            }
        },
        "apierror.SaleResult": {
            "type": "object",
            "properties": {"success": {"type": "boolean"}, "message": {"type": "string"}}
        },
        "dto.SaleItemRequest": {
            "type": "object",
            "required": ["quantity"],
            "properties": {
                "id": {"type": "string"},
                "name": {"type": "string"},
                "price": {"type": "number", "minimum": 0},
                "quantity": {"type": "integer", "minimum": 1},
                "barcode": {"type": "string"}
            }
        },
        "dto.CreateSaleRequest": {
            "type": "object",
            "required": ["items"],
            "properties": {
                "items": {"type": "array", "minItems": 1, "items": {"$ref": "#/definitions/dto.SaleItemRequest"}},
                "total": {"type": "number", "minimum": 0},
                "paymentMethod": {"type": "string", "default": "Cash"},
                "date": {"type": "string", "format": "date-time"},
                "offlineId": {"type": "string", "maxLength": 64},
                "createdAt": {"type": "string"},
                "synced": {"type": "boolean"},
                "customerEmail": {"type": "string", "format": "email"}
            }
        },
        "dto.SaleItemResponse": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "name": {"type": "string"},
                "price": {"type": "number"},
                "quantity": {"type": "integer"},
                "barcode": {"type": "string"}
            }
        },
        "dto.SaleResponse": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "items": {"type": "array", "items": {"$ref": "#/definitions/dto.SaleItemResponse"}},
                "total": {"type": "number"},
                "paymentMethod": {"type": "string"},
                "date": {"type": "string", "format": "date-time"},
                "status": {"type": "string", "enum": ["completed", "refunded"]},
                "createdAt": {"type": "string", "format": "date-time"}
            }
        },
        "dto.CreateSaleResponse": {
            "type": "object",
            "properties": {
                "success": {"type": "boolean"},
                "message": {"type": "string"},
                "sale": {"$ref": "#/definitions/dto.SaleResponse"}
            }
        },
        "dto.RecentSale": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "time": {"type": "string", "example": "14:05"},
                "total": {"type": "number"},
                "items": {"type": "integer"},
                "amount": {"type": "string", "example": "12.50"},
                "status": {"type": "string"}
            }
        },
        "dto.SalesSummary": {
            "type": "object",
            "properties": {
                "totalSales": {"type": "number"},
                "numberOfTransactions": {"type": "integer"},
                "transactions": {"type": "array", "items": {"$ref": "#/definitions/dto.SaleResponse"}}
            }
        },
        "dto.CreateProductRequest": {
            "type": "object",
            "required": ["barcode", "name"],
            "properties": {
                "barcode": {"type": "string", "maxLength": 64},
                "name": {"type": "string"},
                "category": {"type": "string"},
                "price": {"type": "number", "minimum": 0},
                "stockQuantity": {"type": "integer", "minimum": 0},
                "lowStockThreshold": {"type": "integer", "minimum": 0}
            }
        },
        "dto.AdjustStockRequest": {
            "type": "object",
            "required": ["delta", "reason"],
            "properties": {
                "delta": {"type": "integer"},
                "reason": {"type": "string", "minLength": 3}
            }
        },
        "dto.ProductResponse": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "barcode": {"type": "string"},
                "name": {"type": "string"},
                "category": {"type": "string"},
                "price": {"type": "number"},
                "stockQuantity": {"type": "integer"},
                "lowStockThreshold": {"type": "integer"},
                "lowStock": {"type": "boolean"}
            }
        },
        "dto.ProductListResponse": {
            "type": "object",
            "properties": {
                "data": {"type": "array", "items": {"$ref": "#/definitions/dto.ProductResponse"}},
                "total": {"type": "integer"},
                "page": {"type": "integer"},
                "limit": {"type": "integer"}
            }
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "Stolar POS API",
	Description:      "Sale ingestion, reporting and product stock for Stolar POS tills.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
