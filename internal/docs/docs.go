// Package docs registra la especificación OpenAPI servida en /swagger/.
// Regenerar con: swag init -g cmd/api/main.go -o internal/docs
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
        "/health": {
            "get": {
                "produces": ["application/json"],
                "tags": ["health"],
                "summary": "Basic health check",
                "responses": {
                    "200": {"description": "Service is running correctly", "schema": {"$ref": "#/definitions/dto.HealthResponse"}}
                }
            }
        },
        "/ready": {
            "get": {
                "produces": ["application/json"],
                "tags": ["health"],
                "summary": "Readiness check",
                "responses": {
                    "200": {"description": "Service is ready to receive traffic", "schema": {"$ref": "#/definitions/dto.ReadyResponse"}}
                }
            }
        },
        "/api/v1/rates/latest": {
            "get": {
                "produces": ["application/json"],
                "tags": ["rates"],
                "summary": "Latest rates table",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/dto.RatesResponse"}}
                }
            }
        },
        "/api/v1/rates/{date}": {
            "get": {
                "produces": ["application/json"],
                "tags": ["rates"],
                "summary": "Rates table for a date",
                "parameters": [
                    {"type": "string", "description": "Date (YYYY-MM-DD)", "name": "date", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/dto.RatesResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/dto.ErrorResponse"}}
                }
            }
        },
        "/api/v1/rates/{code}/history": {
            "get": {
                "produces": ["application/json"],
                "tags": ["rates"],
                "summary": "Currency history",
                "parameters": [
                    {"type": "string", "description": "ISO 4217 currency code", "name": "code", "in": "path", "required": true},
                    {"type": "string", "description": "Start date (YYYY-MM-DD)", "name": "start", "in": "query", "required": true},
                    {"type": "string", "description": "End date (YYYY-MM-DD)", "name": "end", "in": "query", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/dto.HistoryResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/dto.ErrorResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/dto.ErrorResponse"}},
                    "502": {"description": "Bad Gateway", "schema": {"$ref": "#/definitions/dto.ErrorResponse"}}
                }
            }
        },
        "/api/v1/history": {
            "get": {
                "produces": ["application/json"],
                "tags": ["rates"],
                "summary": "History of every currency",
                "parameters": [
                    {"type": "string", "description": "Start date (YYYY-MM-DD)", "name": "start", "in": "query", "required": true},
                    {"type": "string", "description": "End date (YYYY-MM-DD)", "name": "end", "in": "query", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/dto.BulkHistoryResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/dto.ErrorResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/dto.ErrorResponse"}}
                }
            }
        },
        "/api/v1/currencies": {
            "get": {
                "produces": ["application/json"],
                "tags": ["rates"],
                "summary": "Available currencies",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/dto.CurrenciesResponse"}}
                }
            }
        },
        "/api/v1/convert": {
            "get": {
                "produces": ["application/json"],
                "tags": ["rates"],
                "summary": "Convert an amount",
                "parameters": [
                    {"type": "string", "description": "Source currency", "name": "from", "in": "query", "required": true},
                    {"type": "string", "description": "Target currency", "name": "to", "in": "query", "required": true},
                    {"type": "string", "description": "Amount", "name": "amount", "in": "query", "required": true},
                    {"type": "string", "description": "Table date (YYYY-MM-DD)", "name": "date", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/dto.ConversionResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/dto.ErrorResponse"}}
                }
            }
        },
        "/api/v1/cache/stats": {
            "get": {
                "produces": ["application/json"],
                "tags": ["cache"],
                "summary": "Cache statistics",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/dto.CacheStatsResponse"}}
                }
            }
        },
        "/api/v1/cache/clear": {
            "delete": {
                "produces": ["application/json"],
                "tags": ["cache"],
                "summary": "Clear every cache",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/dto.MessageResponse"}}
                }
            }
        },
        "/api/v1/cache/{name}": {
            "delete": {
                "produces": ["application/json"],
                "tags": ["cache"],
                "summary": "Clear one cache",
                "parameters": [
                    {"enum": ["rates", "historical", "metadata"], "type": "string", "description": "Cache name", "name": "name", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/dto.MessageResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/dto.ErrorResponse"}}
                }
            }
        },
        "/api/v1/cache-warming/status": {
            "get": {
                "produces": ["application/json"],
                "tags": ["cache-warming"],
                "summary": "Warming jobs status",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/dto.WarmingStatusResponse"}}
                }
            }
        },
        "/api/v1/cache-warming/status/{jobId}": {
            "get": {
                "produces": ["application/json"],
                "tags": ["cache-warming"],
                "summary": "Warming job status",
                "parameters": [
                    {"enum": ["currency-list", "current-rates", "historical-rates"], "type": "string", "description": "Job id", "name": "jobId", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/dto.WarmingJobData"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/dto.ErrorResponse"}}
                }
            }
        },
        "/api/v1/cache-warming/run/{jobId}": {
            "post": {
                "produces": ["application/json"],
                "tags": ["cache-warming"],
                "summary": "Run one warming job",
                "parameters": [
                    {"enum": ["currency-list", "current-rates", "historical-rates"], "type": "string", "description": "Job id", "name": "jobId", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/dto.WarmingJobData"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/dto.ErrorResponse"}},
                    "500": {"description": "Internal Server Error", "schema": {"$ref": "#/definitions/dto.ErrorWithJobResponse"}}
                }
            }
        },
        "/api/v1/cache-warming/run-all": {
            "post": {
                "produces": ["application/json"],
                "tags": ["cache-warming"],
                "summary": "Run every warming job",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/dto.RunAllResponse"}}
                }
            }
        }
    },
    "definitions": {
        "dto.RateData": {
            "type": "object",
            "properties": {
                "code": {"type": "string", "example": "USD"},
                "currency": {"type": "string", "example": "dolar amerykański"},
                "date": {"type": "string", "example": "2024-01-15"},
                "buy": {"type": "string", "example": "3.9501"},
                "sell": {"type": "string", "example": "4.0299"}
            }
        },
        "dto.DateRangeData": {
            "type": "object",
            "properties": {
                "start": {"type": "string", "example": "2024-01-01"},
                "end": {"type": "string", "example": "2024-01-31"}
            }
        },
        "dto.RatesResponse": {
            "type": "object",
            "properties": {
                "requestedDate": {"type": "string", "example": "2024-01-14"},
                "effectiveDate": {"type": "string", "example": "2024-01-12"},
                "fromPreviousDate": {"type": "boolean"},
                "source": {"type": "string", "enum": ["cache", "upstream", "substituted", "none"]},
                "rates": {"type": "array", "items": {"$ref": "#/definitions/dto.RateData"}}
            }
        },
        "dto.HistoryResponse": {
            "type": "object",
            "properties": {
                "currency": {"type": "string", "example": "USD"},
                "range": {"$ref": "#/definitions/dto.DateRangeData"},
                "source": {"type": "string"},
                "rates": {"type": "array", "items": {"$ref": "#/definitions/dto.RateData"}}
            }
        },
        "dto.BulkHistoryResponse": {
            "type": "object",
            "properties": {
                "requestedRange": {"$ref": "#/definitions/dto.DateRangeData"},
                "actualRange": {"$ref": "#/definitions/dto.DateRangeData"},
                "source": {"type": "string"},
                "currencies": {"type": "integer"},
                "rates": {"type": "object", "additionalProperties": {"type": "array", "items": {"$ref": "#/definitions/dto.RateData"}}}
            }
        },
        "dto.CurrencyData": {
            "type": "object",
            "properties": {
                "code": {"type": "string", "example": "EUR"},
                "name": {"type": "string", "example": "euro"}
            }
        },
        "dto.CurrenciesResponse": {
            "type": "object",
            "properties": {
                "currencies": {"type": "array", "items": {"$ref": "#/definitions/dto.CurrencyData"}},
                "count": {"type": "integer"}
            }
        },
        "dto.ConversionResponse": {
            "type": "object",
            "properties": {
                "from": {"type": "string", "example": "EUR"},
                "to": {"type": "string", "example": "USD"},
                "amount": {"type": "string", "example": "100"},
                "result": {"type": "string", "example": "108.75"},
                "rate": {"type": "string", "example": "1.0875"},
                "date": {"type": "string", "example": "2024-01-15"}
            }
        },
        "dto.CacheStatsData": {
            "type": "object",
            "properties": {
                "hitCount": {"type": "integer"},
                "missCount": {"type": "integer"},
                "keyCount": {"type": "integer"},
                "capacity": {"type": "integer"},
                "defaultTtlSeconds": {"type": "number"}
            }
        },
        "dto.CacheStatsResponse": {
            "type": "object",
            "additionalProperties": {"$ref": "#/definitions/dto.CacheStatsData"}
        },
        "dto.MessageResponse": {
            "type": "object",
            "properties": {
                "message": {"type": "string"}
            }
        },
        "dto.WarmingJobData": {
            "type": "object",
            "properties": {
                "id": {"type": "string", "example": "current-rates"},
                "status": {"type": "string", "enum": ["pending", "running", "completed", "failed"]},
                "lastRunAt": {"type": "string"},
                "nextRunAt": {"type": "string"},
                "lastError": {"type": "string"},
                "runCount": {"type": "integer"},
                "durationMs": {"type": "number"}
            }
        },
        "dto.WarmingStatusResponse": {
            "type": "object",
            "properties": {
                "jobs": {"type": "array", "items": {"$ref": "#/definitions/dto.WarmingJobData"}},
                "inFlight": {"type": "boolean"},
                "timestamp": {"type": "string"}
            }
        },
        "dto.RunAllResponse": {
            "type": "object",
            "properties": {
                "started": {"type": "boolean"},
                "message": {"type": "string"},
                "jobs": {"type": "array", "items": {"$ref": "#/definitions/dto.WarmingJobData"}},
                "timestamp": {"type": "string"}
            }
        },
        "dto.ErrorResponse": {
            "type": "object",
            "properties": {
                "error": {"type": "string", "example": "INVALID_PARAMETER"},
                "message": {"type": "string"}
            }
        },
        "dto.ErrorWithJobResponse": {
            "type": "object",
            "properties": {
                "error": {"type": "string", "example": "JOB_FAILED"},
                "message": {"type": "string"},
                "job": {"$ref": "#/definitions/dto.WarmingJobData"}
            }
        },
        "dto.HealthResponse": {
            "type": "object",
            "properties": {
                "status": {"type": "string", "enum": ["healthy", "ready", "degraded", "unhealthy"]},
                "timestamp": {"type": "string"},
                "services": {"type": "object", "additionalProperties": {"type": "string"}}
            }
        },
        "dto.ReadyResponse": {
            "type": "object",
            "properties": {
                "status": {"type": "string"},
                "timestamp": {"type": "string"},
                "services": {"type": "object", "additionalProperties": {"type": "string"}},
                "caches": {"$ref": "#/definitions/dto.CacheStatsResponse"},
                "warming": {"type": "array", "items": {"$ref": "#/definitions/dto.WarmingJobData"}}
            }
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "localhost:8080",
	BasePath:         "/",
	Schemes:          []string{"http"},
	Title:            "FX Rates Service API",
	Description:      "Exchange rates from NBP table C with tiered caching, date fallback and cache warming.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
