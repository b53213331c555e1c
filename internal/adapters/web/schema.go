package web

import (
	"net/http"
	"reflect"

	"github.com/go-chi/chi/v5"
	"github.com/invopop/jsonschema"
	"github.com/shopspring/decimal"
)

var decimalType = reflect.TypeOf(decimal.Decimal{})

// payloadSchemas maps each {name} of /api/schema/{name} to its request body.
var payloadSchemas = map[string]any{
	"cliente": customerRequest{},
	"venta":   saleRequest{},
}

// generateSchema reflects the JSON schema of a request body. Decimal amounts
// are published as numbers.
func generateSchema(v any) *jsonschema.Schema {
	reflector := jsonschema.Reflector{
		AllowAdditionalProperties: false,
		DoNotReference:            true,
		Mapper: func(t reflect.Type) *jsonschema.Schema {
			if t == decimalType {
				return &jsonschema.Schema{Type: "number"}
			}
			return nil
		},
	}
	return reflector.Reflect(v)
}

// schema handles GET /api/schema/{name}.
func (h *Handler) schema(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	v, ok := payloadSchemas[name]
	if !ok {
		writeError(w, r, "unknown schema "+name, "NOT_FOUND", http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, generateSchema(v))
}
