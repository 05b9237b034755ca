package routes

import (
	"net/http"

	apierrors "k8s.io/apimachinery/pkg/api/errors"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/client-go/dynamic"
	"k8s.io/client-go/kubernetes"
)

func ListNamespaces(clientset kubernetes.Interface) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		namespaces, err := clientset.CoreV1().Namespaces().List(r.Context(), metav1.ListOptions{})
		if err != nil {
			internalError(w, r, "failed to list namespaces", err)
			return
		}
		writeJSON(w, r, namespaces)
	}
}

func ListResources(dynamicClient dynamic.Interface) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		list, err := dynamicClient.Resource(resource(r)).Namespace(r.PathValue("namespace")).List(r.Context(), metav1.ListOptions{})
		if err != nil {
			if apierrors.IsNotFound(err) {
				http.NotFound(w, r)
				return
			}
			internalError(w, r, "failed to list resources", err)
			return
		}
		writeJSON(w, r, list)
	}
}

func Read(dynamicClient dynamic.Interface) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		u, err := dynamicClient.Resource(resource(r)).Namespace(r.PathValue("namespace")).Get(r.Context(), r.PathValue("name"), metav1.GetOptions{})
		if err != nil {
			if apierrors.IsNotFound(err) {
				http.NotFound(w, r)
				return
			}
			internalError(w, r, "failed to get resource", err)
			return
		}
		writeJSON(w, r, u)
	}
}
