// Package docs 注册Swagger文档，由/swagger/*any路由读取
//
// 处理器上的@Summary/@Router注释可用`swag init -g internal/interface/http/router/router.go`
// 重新生成完整的swagger.json，覆盖下面的模板。
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
        "BearerAuth": {"type": "apiKey", "name": "Authorization", "in": "header"}
    },
    "paths": {
        "/books": {
            "get": {"tags": ["图书"], "summary": "图书列表/检索（书名或作者子串）",
                "parameters": [{"type": "string", "name": "q", "in": "query"}],
                "responses": {"200": {"description": "OK"}}},
            "post": {"tags": ["图书"], "summary": "上架新书", "security": [{"BearerAuth": []}],
                "responses": {"200": {"description": "OK"}}}
        },
        "/books/{isbn}": {
            "get": {"tags": ["图书"], "summary": "图书详情与可借数量",
                "parameters": [{"type": "string", "name": "isbn", "in": "path", "required": true}],
                "responses": {"200": {"description": "OK"}}}
        },
        "/members": {
            "post": {"tags": ["会员"], "summary": "登记会员", "security": [{"BearerAuth": []}],
                "responses": {"200": {"description": "OK"}}}
        },
        "/members/{id}": {
            "get": {"tags": ["会员"], "summary": "会员详情（在借图书、欠款）",
                "parameters": [{"type": "string", "name": "id", "in": "path", "required": true}],
                "responses": {"200": {"description": "OK"}}}
        },
        "/members/{id}/loans": {
            "get": {"tags": ["会员"], "summary": "会员借阅历史（最新在前）",
                "parameters": [{"type": "string", "name": "id", "in": "path", "required": true}],
                "responses": {"200": {"description": "OK"}}}
        },
        "/members/{id}/status": {
            "put": {"tags": ["会员"], "summary": "启用或停用会员", "security": [{"BearerAuth": []}],
                "parameters": [{"type": "string", "name": "id", "in": "path", "required": true}],
                "responses": {"200": {"description": "OK"}}}
        },
        "/members/{id}/fines/payments": {
            "post": {"tags": ["会员"], "summary": "缴纳罚款（单位：分）", "security": [{"BearerAuth": []}],
                "parameters": [{"type": "string", "name": "id", "in": "path", "required": true}],
                "responses": {"200": {"description": "OK"}}}
        },
        "/loans": {
            "post": {"tags": ["借还"], "summary": "借书（借期14天）", "security": [{"BearerAuth": []}],
                "responses": {"200": {"description": "OK"}}}
        },
        "/loans/return": {
            "post": {"tags": ["借还"], "summary": "还书并结算逾期罚款", "security": [{"BearerAuth": []}],
                "responses": {"200": {"description": "OK"}}}
        },
        "/stats": {
            "get": {"tags": ["统计"], "summary": "馆藏与会员统计",
                "responses": {"200": {"description": "OK"}}}
        }
    }
}`

// SwaggerInfo 文档元信息
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/api/v1",
	Schemes:          []string{},
	Title:            "Library API",
	Description:      "Book inventory, member roster and borrow/return lifecycle.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
