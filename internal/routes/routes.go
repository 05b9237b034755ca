// Package routes holds the HTTP handlers of the controller API and the diff
// server.
package routes

import (
	"encoding/json"
	"fmt"
	"net/http"

	"k8s.io/apimachinery/pkg/runtime/schema"

	"image-diff-controller/internal/myhttp"
)

// resource maps the {group}/{version}/{kind} path values to the resource,
// pluralizing the lowercase kind.
func resource(r *http.Request) schema.GroupVersionResource {
	return schema.GroupVersionResource{
		Group:    r.PathValue("group"),
		Version:  r.PathValue("version"),
		Resource: r.PathValue("kind") + "s",
	}
}

func writeJSON(w http.ResponseWriter, r *http.Request, v any) {
	b, err := json.Marshal(v)
	if err != nil {
		myhttp.Logger(r.Context()).Error(fmt.Sprintf("failed to marshal json: %s", err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(b)
}

func internalError(w http.ResponseWriter, r *http.Request, message string, err error) {
	myhttp.Logger(r.Context()).Error(fmt.Sprintf("%s: %s", message, err))
	http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
}
