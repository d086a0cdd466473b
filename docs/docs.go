// Package docs holds the generated swagger spec. Regenerate with:
//
//	swag init -g cmd/server/main.go -o docs
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
        "/login": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["auth"],
                "summary": "Log in",
                "responses": {
                    "200": {"description": "OK"},
                    "401": {"description": "Unauthorized"},
                    "403": {"description": "Forbidden"},
                    "422": {"description": "Unprocessable Entity"},
                    "502": {"description": "Bad Gateway"}
                }
            }
        },
        "/logout": {
            "post": {
                "tags": ["auth"],
                "summary": "Log out",
                "responses": {"204": {"description": "No Content"}}
            }
        },
        "/me": {
            "get": {
                "produces": ["application/json"],
                "tags": ["auth"],
                "summary": "Current identity",
                "responses": {
                    "200": {"description": "OK"},
                    "401": {"description": "Unauthorized"}
                }
            }
        },
        "/navigation": {
            "get": {
                "produces": ["application/json"],
                "tags": ["navigation"],
                "summary": "Navigation shell",
                "responses": {
                    "200": {"description": "OK"},
                    "401": {"description": "Unauthorized"}
                }
            }
        },
        "/audit/logins": {
            "get": {
                "produces": ["application/json"],
                "tags": ["audit"],
                "summary": "Login audit trail",
                "responses": {
                    "200": {"description": "OK"},
                    "401": {"description": "Unauthorized"},
                    "403": {"description": "Forbidden"}
                }
            }
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it.
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "Tour Admin Gateway API",
	Description:      "Session gateway for the tour-booking admin dashboard.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
