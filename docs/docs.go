// Package docs registra a especificação OpenAPI da API do Stockroom para o swaggo.
// Regenerar com `swag init -g cmd/main.go` após alterar as anotações dos handlers.
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
    "securityDefinitions": {
        "ApiKeyAuth": {
            "type": "apiKey",
            "in": "header",
            "name": "Authorization"
        }
    },
    "paths": {
        "/auth/register": {
            "post": {
                "tags": ["auth"],
                "summary": "Auto-cadastro; o usuário é sempre criado como STOCKER",
                "parameters": [{"in": "body", "name": "registration", "required": true, "schema": {"$ref": "#/definitions/domain.UserRegistration"}}],
                "responses": {
                    "201": {"description": "Usuário criado com sucesso", "schema": {"$ref": "#/definitions/domain.User"}},
                    "409": {"description": "Email já cadastrado", "schema": {"$ref": "#/definitions/domain.ErrorResponse"}}
                }
            }
        },
        "/auth/login": {
            "post": {
                "tags": ["auth"],
                "summary": "Autentica um usuário e retorna a sessão",
                "parameters": [{"in": "body", "name": "login", "required": true, "schema": {"$ref": "#/definitions/domain.Credentials"}}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/domain.Session"}},
                    "401": {"description": "Credenciais inválidas", "schema": {"$ref": "#/definitions/domain.ErrorResponse"}},
                    "429": {"description": "Muitas tentativas", "schema": {"$ref": "#/definitions/domain.ErrorResponse"}}
                }
            }
        },
        "/users": {
            "post": {
                "security": [{"ApiKeyAuth": []}],
                "tags": ["users"],
                "summary": "Cadastra um usuário com papel (apenas STOCK_MANAGER)",
                "parameters": [{"in": "body", "name": "registration", "required": true, "schema": {"$ref": "#/definitions/domain.UserRegistration"}}],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/domain.User"}},
                    "403": {"description": "Apenas STOCK_MANAGER", "schema": {"$ref": "#/definitions/domain.ErrorResponse"}}
                }
            }
        },
        "/auth/logout": {
            "post": {
                "security": [{"ApiKeyAuth": []}],
                "tags": ["auth"],
                "summary": "Encerra a sessão atual",
                "responses": {"204": {"description": "No Content"}}
            }
        },
        "/products": {
            "get": {
                "security": [{"ApiKeyAuth": []}],
                "tags": ["products"],
                "summary": "Lista produtos",
                "responses": {"200": {"description": "OK", "schema": {"type": "array", "items": {"$ref": "#/definitions/domain.Product"}}}}
            },
            "post": {
                "security": [{"ApiKeyAuth": []}],
                "tags": ["products"],
                "summary": "Cria um novo produto",
                "parameters": [{"in": "body", "name": "product", "required": true, "schema": {"$ref": "#/definitions/domain.NewProduct"}}],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/domain.Product"}},
                    "400": {"description": "Payload inválido", "schema": {"$ref": "#/definitions/domain.ErrorResponse"}}
                }
            }
        },
        "/products/{id}": {
            "get": {
                "security": [{"ApiKeyAuth": []}],
                "tags": ["products"],
                "summary": "Obtém um produto por ID",
                "parameters": [{"type": "string", "name": "id", "in": "path", "required": true}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/domain.Product"}},
                    "404": {"description": "Produto não encontrado", "schema": {"$ref": "#/definitions/domain.ErrorResponse"}}
                }
            }
        },
        "/stock/movements": {
            "post": {
                "security": [{"ApiKeyAuth": []}],
                "tags": ["stock"],
                "summary": "Registra uma entrada ou saída de estoque",
                "parameters": [{"in": "body", "name": "movement", "required": true, "schema": {"$ref": "#/definitions/domain.MovementRequest"}}],
                "responses": {
                    "201": {"description": "Created"},
                    "422": {"description": "Estoque insuficiente", "schema": {"$ref": "#/definitions/domain.ErrorResponse"}}
                }
            }
        },
        "/orders/{id}/status": {
            "put": {
                "security": [{"ApiKeyAuth": []}],
                "tags": ["orders"],
                "summary": "Altera o status do pedido",
                "parameters": [
                    {"type": "string", "name": "id", "in": "path", "required": true},
                    {"in": "body", "name": "status", "required": true, "schema": {"$ref": "#/definitions/domain.StatusChange"}}
                ],
                "responses": {
                    "200": {"description": "OK"},
                    "409": {"description": "Estorno deixaria estoque negativo", "schema": {"$ref": "#/definitions/domain.ErrorResponse"}}
                }
            }
        },
        "/reports/summary": {
            "get": {
                "security": [{"ApiKeyAuth": []}],
                "tags": ["reports"],
                "summary": "Resumo do estoque",
                "parameters": [
                    {"type": "string", "name": "category_id", "in": "query"},
                    {"type": "string", "name": "since", "in": "query"}
                ],
                "responses": {"200": {"description": "OK"}}
            }
        }
    },
    "definitions": {
        "domain.ErrorResponse": {
            "type": "object",
            "properties": {
                "code": {"type": "integer", "example": 400},
                "category": {"type": "string", "example": "VALIDATION_ERROR"},
                "message": {"type": "string"}
            }
        },
        "domain.UserRegistration": {
            "type": "object",
            "required": ["email", "password", "name"],
            "properties": {
                "email": {"type": "string"},
                "password": {"type": "string"},
                "name": {"type": "string"},
                "role": {"type": "string", "enum": ["STOCKER", "STOCK_MANAGER", "PURCHASING_MANAGER"]}
            }
        },
        "domain.User": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "email": {"type": "string"},
                "name": {"type": "string"},
                "role": {"type": "string"},
                "status": {"type": "string"},
                "last_login_at": {"type": "string"}
            }
        },
        "domain.Credentials": {
            "type": "object",
            "properties": {"email": {"type": "string"}, "password": {"type": "string"}}
        },
        "domain.Session": {
            "type": "object",
            "properties": {
                "token": {"type": "string"},
                "user_id": {"type": "string"},
                "name": {"type": "string"},
                "role": {"type": "string"},
                "expires_at": {"type": "string"}
            }
        },
        "domain.NewProduct": {
            "type": "object",
            "required": ["name", "category_id"],
            "properties": {
                "name": {"type": "string"},
                "description": {"type": "string"},
                "unit_price": {"type": "string", "example": "12.50"},
                "initial_quantity": {"type": "integer"},
                "alert_threshold": {"type": "integer"},
                "category_id": {"type": "string"}
            }
        },
        "domain.Product": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "name": {"type": "string"},
                "description": {"type": "string"},
                "unit_price": {"type": "string"},
                "quantity_in_stock": {"type": "integer"},
                "alert_threshold": {"type": "integer"},
                "is_low_stock": {"type": "boolean"},
                "category_id": {"type": "string"},
                "version": {"type": "integer"}
            }
        },
        "domain.MovementRequest": {
            "type": "object",
            "required": ["product_id", "delta", "reason"],
            "properties": {
                "product_id": {"type": "string"},
                "delta": {"type": "integer"},
                "reason": {"type": "string"}
            }
        },
        "domain.StatusChange": {
            "type": "object",
            "properties": {"status": {"type": "string", "enum": ["PENDING", "IN_PROGRESS", "DELIVERED", "CANCELLED"]}}
        }
    }
}`

// SwaggerInfo contém as informações exportadas da especificação.
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/v1",
	Schemes:          []string{},
	Title:            "Stockroom API",
	Description:      "Estoque, pedidos de compra e autenticação do Stockroom.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
