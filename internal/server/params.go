package server

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/brandonestevez/walter/internal/catalog"
)

func parseInt(r *http.Request, key string) (int, error) {
	s := r.URL.Query().Get(key)
	if s == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("invalid %s value %q: %w", key, s, err)
	}
	return n, nil
}

func parseListOpts(r *http.Request) (catalog.ListOpts, error) {
	limit, err := parseInt(r, "limit")
	if err != nil {
		return catalog.ListOpts{}, err
	}
	return catalog.ListOpts{
		Format: r.URL.Query().Get("format"),
		Limit:  limit,
	}, nil
}
