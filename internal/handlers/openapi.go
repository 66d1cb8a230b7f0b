package handlers

import (
	"encoding/json"
	"html/template"
	"net/http"
	"strconv"

	"github.com/bdgeo/location-api/internal/location"
	"github.com/bdgeo/location-api/pkg/config"
	"github.com/gin-gonic/gin"
	"gopkg.in/yaml.v3"
)

const (
	openAPIVersion   = "3.0.3"
	schemaPath       = "/api/schema/"
	docsTemplateName = "swagger-ui"

	contentTypeOpenAPIYAML = "application/vnd.oai.openapi; charset=utf-8"
	contentTypeOpenAPIJSON = "application/vnd.oai.openapi+json; charset=utf-8"
)

const swaggerUITemplate = `<!DOCTYPE html>
<html>
  <head>
    <title>{{ .Title }}</title>
    <meta charset="utf-8">
    <meta name="viewport" content="width=device-width, initial-scale=1">
    <link rel="stylesheet" href="https://cdn.jsdelivr.net/npm/swagger-ui-dist@5/swagger-ui.css">
  </head>
  <body>
    <div id="swagger-ui"></div>
    <script src="https://cdn.jsdelivr.net/npm/swagger-ui-dist@5/swagger-ui-bundle.js"></script>
    <script>
      const settings = {{ .Settings }};
      window.ui = SwaggerUIBundle(Object.assign({
        url: {{ .SchemaURL }},
        dom_id: "#swagger-ui",
        presets: [SwaggerUIBundle.presets.apis],
        layout: "BaseLayout",
      }, settings));
    </script>
  </body>
</html>
`

// DocsTemplate is the Swagger UI page, to be registered with
// gin.Engine.SetHTMLTemplate.
func DocsTemplate() *template.Template {
	return template.Must(template.New(docsTemplateName).Parse(swaggerUITemplate))
}

// OpenAPIHandler serves the OpenAPI 3 description of the API and its
// Swagger UI page.
type OpenAPIHandler struct {
	cfg  config.OpenAPIConfig
	spec map[string]any
	yaml []byte
	json []byte
}

// NewOpenAPIHandler builds and encodes the document once.
func NewOpenAPIHandler(cfg config.OpenAPIConfig, pageSize int) (*OpenAPIHandler, error) {
	h := &OpenAPIHandler{cfg: cfg}
	h.spec = h.buildSpec(pageSize)

	var err error
	if h.yaml, err = yaml.Marshal(h.spec); err != nil {
		return nil, err
	}
	if h.json, err = json.Marshal(h.spec); err != nil {
		return nil, err
	}
	return h, nil
}

// Schema returns the document as YAML, or JSON with ?format=json.
func (h *OpenAPIHandler) Schema(c *gin.Context) {
	switch c.Query("format") {
	case "", "yaml":
		c.Data(http.StatusOK, contentTypeOpenAPIYAML, h.yaml)
	case "json":
		c.Data(http.StatusOK, contentTypeOpenAPIJSON, h.json)
	default:
		c.JSON(http.StatusNotFound, gin.H{"detail": detailNotFound})
	}
}

// Docs renders Swagger UI pointed at the JSON schema.
func (h *OpenAPIHandler) Docs(c *gin.Context) {
	settings, err := json.Marshal(h.cfg.SwaggerUI)
	if err != nil {
		serverError(c, err, "encoding swagger ui settings")
		return
	}
	c.HTML(http.StatusOK, docsTemplateName, gin.H{
		"Title":     h.cfg.Title,
		"SchemaURL": schemaPath + "?format=json",
		"Settings":  template.JS(settings),
	})
}

func (h *OpenAPIHandler) buildSpec(pageSize int) map[string]any {
	return map[string]any{
		"openapi": openAPIVersion,
		"info": map[string]any{
			"title":       h.cfg.Title,
			"description": h.cfg.Description,
			"version":     h.cfg.Version,
		},
		"tags": []map[string]any{
			{"name": "divisions", "description": "Top level administrative divisions"},
			{"name": "districts", "description": "Districts within a division"},
			{"name": "upazilas", "description": "Sub-districts within a district"},
			{"name": "unions", "description": "Union councils within an upazila"},
			{"name": "search", "description": "Full-text search across all levels"},
		},
		"paths":      buildPaths(pageSize),
		"components": map[string]any{"schemas": buildSchemas()},
	}
}

func buildPaths(pageSize int) map[string]any {
	pageHelp := "A page number within the paginated result set, or \"last\". Pages hold " + strconv.Itoa(pageSize) + " results."
	page := queryParam("page", "string", pageHelp)
	search := queryParam("search", "string", "Case-insensitive substring of the English or Bangla name.")
	filter := func(name, parent string) map[string]any {
		return queryParam(name, "integer", "Only return rows that belong to this "+parent+" id.")
	}

	return map[string]any{
		"/api/divisions/": map[string]any{
			"get": listOp("divisions", "divisions_list", "List divisions", "Division", page, search),
		},
		"/api/divisions/{id}/": map[string]any{
			"get": detailOp("divisions", "divisions_retrieve", "Retrieve a division", "Division"),
		},
		"/api/divisions/{id}/districts/": map[string]any{
			"get": listOp("divisions", "divisions_districts_list", "List the districts of a division", "District", pathParam(), page, search),
		},
		"/api/districts/": map[string]any{
			"get": listOp("districts", "districts_list", "List districts", "District", page, search, filter("division", "division")),
		},
		"/api/districts/{id}/": map[string]any{
			"get": detailOp("districts", "districts_retrieve", "Retrieve a district", "District"),
		},
		"/api/districts/{id}/upazilas/": map[string]any{
			"get": listOp("districts", "districts_upazilas_list", "List the upazilas of a district", "Upazila", pathParam(), page, search),
		},
		"/api/upazilas/": map[string]any{
			"get": listOp("upazilas", "upazilas_list", "List upazilas", "Upazila", page, search, filter("district", "district")),
		},
		"/api/upazilas/{id}/": map[string]any{
			"get": detailOp("upazilas", "upazilas_retrieve", "Retrieve an upazila", "Upazila"),
		},
		"/api/upazilas/{id}/unions/": map[string]any{
			"get": listOp("upazilas", "upazilas_unions_list", "List the unions of an upazila", "Union", pathParam(), page, search),
		},
		"/api/unions/": map[string]any{
			"get": listOp("unions", "unions_list", "List unions", "Union", page, search, filter("upazila", "upazila")),
		},
		"/api/unions/{id}/": map[string]any{
			"get": detailOp("unions", "unions_retrieve", "Retrieve a union", "Union"),
		},
		"/api/search/": map[string]any{
			"get": map[string]any{
				"tags":        []string{"search"},
				"operationId": "search_list",
				"summary":     "Search locations by name",
				"parameters": []map[string]any{
					required(queryParam("q", "string", "Search terms; every term must match.")),
					queryParam("limit", "integer", "Maximum number of results, 1 to 100. Defaults to 20."),
					queryParam("level", "string", "Only return results of this level: division, district, upazila or union."),
					queryParam("fuzzy", "boolean", "Allow one typo per term. Defaults to true."),
				},
				"responses": map[string]any{
					"200": jsonResponse("Search results", ref("SearchResults")),
					"400": jsonResponse("Invalid parameters", ref("Error")),
				},
			},
		},
	}
}

func buildSchemas() map[string]any {
	str := map[string]any{"type": "string"}
	id := map[string]any{"type": "integer", "format": "int64", "readOnly": true}
	fk := map[string]any{"type": "integer", "format": "int64"}
	num := map[string]any{"type": "number", "format": "double"}

	schemas := map[string]any{
		"Error": object(map[string]any{"detail": str}),
		"Division": object(map[string]any{
			"id": id, "name": str, "bn_name": str, "url": str,
		}),
		"District": object(map[string]any{
			"id": id, "division_id": fk, "name": str, "bn_name": str, "lat": num, "lon": num, "url": str,
		}),
		"Upazila": object(map[string]any{
			"id": id, "district_id": fk, "name": str, "bn_name": str, "url": str,
		}),
		"Union": object(map[string]any{
			"id": id, "upazila_id": fk, "name": str, "bn_name": str, "url": str,
		}),
		"SearchResult": object(map[string]any{
			"level":   map[string]any{"type": "string", "enum": levelNames()},
			"id":      fk,
			"name":    str,
			"bn_name": str,
			"score":   num,
		}),
		"SearchResults": object(map[string]any{
			"results":    map[string]any{"type": "array", "items": ref("SearchResult")},
			"count":      map[string]any{"type": "integer"},
			"total":      map[string]any{"type": "integer"},
			"query":      str,
			"searchTime": str,
		}),
	}
	for _, name := range []string{"Division", "District", "Upazila", "Union"} {
		schemas["Paginated"+name+"List"] = object(map[string]any{
			"count":    map[string]any{"type": "integer", "example": 123},
			"next":     map[string]any{"type": "string", "nullable": true, "format": "uri"},
			"previous": map[string]any{"type": "string", "nullable": true, "format": "uri"},
			"results":  map[string]any{"type": "array", "items": ref(name)},
		})
	}
	return schemas
}

func listOp(tag, opID, summary, schema string, params ...map[string]any) map[string]any {
	return map[string]any{
		"tags":        []string{tag},
		"operationId": opID,
		"summary":     summary,
		"parameters":  params,
		"responses": map[string]any{
			"200": jsonResponse("Paginated list", ref("Paginated"+schema+"List")),
			"404": jsonResponse("Invalid page or unknown parent", ref("Error")),
		},
	}
}

func detailOp(tag, opID, summary, schema string) map[string]any {
	return map[string]any{
		"tags":        []string{tag},
		"operationId": opID,
		"summary":     summary,
		"parameters":  []map[string]any{pathParam()},
		"responses": map[string]any{
			"200": jsonResponse("Found", ref(schema)),
			"404": jsonResponse("Not found", ref("Error")),
		},
	}
}

func queryParam(name, typ, description string) map[string]any {
	return map[string]any{
		"name":        name,
		"in":          "query",
		"description": description,
		"schema":      map[string]any{"type": typ},
	}
}

func pathParam() map[string]any {
	return map[string]any{
		"name":     "id",
		"in":       "path",
		"required": true,
		"schema":   map[string]any{"type": "integer"},
	}
}

func required(p map[string]any) map[string]any {
	p["required"] = true
	return p
}

func jsonResponse(description string, schema map[string]any) map[string]any {
	return map[string]any{
		"description": description,
		"content": map[string]any{
			"application/json": map[string]any{"schema": schema},
		},
	}
}

func object(properties map[string]any) map[string]any {
	return map[string]any{"type": "object", "properties": properties}
}

func ref(name string) map[string]any {
	return map[string]any{"$ref": "#/components/schemas/" + name}
}

func levelNames() []string {
	names := make([]string, 0, len(location.Levels))
	for _, l := range location.Levels {
		names = append(names, string(l))
	}
	return names
}
