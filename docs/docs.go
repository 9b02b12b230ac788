package docs

import "github.com/swaggo/swag"

const docTemplate = `{
  "swagger": "2.0",
  "info": {
    "title": "Site Progress API",
    "description": "Per-division upload progress, status and last activity for field sites",
    "version": "1.0"
  },
  "basePath": "/",
  "paths": {
    "/healthz": {"get": {"tags": ["health"], "summary": "Health check", "produces": ["application/json"], "responses": {"200": {"description": "OK"}, "503": {"description": "Service Unavailable"}}}},
    "/api/checklist": {"get": {"tags": ["checklist"], "summary": "Upload checklist", "produces": ["application/json"], "responses": {"200": {"description": "OK"}}}},
    "/api/sites": {"get": {"tags": ["sites"], "summary": "Sites table", "produces": ["application/json"], "responses": {"200": {"description": "OK"}}}},
    "/api/sites/progress": {"get": {"tags": ["sites"], "summary": "Site progress", "produces": ["application/json"], "responses": {"200": {"description": "OK"}, "400": {"description": "Bad Request"}}}},
    "/api/sites/progress/batch": {"post": {"tags": ["sites"], "summary": "Progress for many sites", "consumes": ["application/json"], "produces": ["application/json"], "responses": {"200": {"description": "OK"}, "400": {"description": "Bad Request"}}}},
    "/api/sites/last-activity": {"get": {"tags": ["sites"], "summary": "Last activity", "produces": ["application/json"], "responses": {"200": {"description": "OK"}}}},
    "/api/tasks": {"get": {"tags": ["sites"], "summary": "Task records", "produces": ["application/json"], "responses": {"200": {"description": "OK"}, "400": {"description": "Bad Request"}}}},
    "/api/boq": {"get": {"tags": ["sites"], "summary": "Merged BOQ", "produces": ["application/json"], "responses": {"200": {"description": "OK"}, "400": {"description": "Bad Request"}, "404": {"description": "Not Found"}}}},
    "/api/import/tasks": {"post": {"tags": ["import"], "summary": "Import task records", "consumes": ["application/json"], "produces": ["application/json"], "responses": {"200": {"description": "OK"}, "400": {"description": "Bad Request"}}}},
    "/api/import/boq": {"post": {"tags": ["import"], "summary": "Import BOQ lines", "consumes": ["multipart/form-data"], "produces": ["application/json"], "responses": {"200": {"description": "OK"}, "400": {"description": "Bad Request"}}}}
  }
}`

func init() {
	swag.Register(swag.Name, &s{})
}

type s struct{}

func (s *s) ReadDoc() string {
	return docTemplate
}
