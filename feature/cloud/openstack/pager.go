package openstack

import (
	"fmt"
	"net/url"

	"github.com/gophercloud/gophercloud/pagination"
)

// rawPage is one page of an OpenStack collection kept as decoded JSON.
// The services disagree on how they link the next page, so every known
// layout is tried in turn.
type rawPage struct {
	pagination.LinkedPageBase
	key string
}

func newRawPage(key string) func(pagination.PageResult) pagination.Page {
	return func(r pagination.PageResult) pagination.Page {
		return rawPage{LinkedPageBase: pagination.LinkedPageBase{PageResult: r}, key: key}
	}
}

func (p rawPage) body() map[string]any {
	m, _ := p.Body.(map[string]any)
	return m
}

func (p rawPage) items() ([]any, error) {
	body := p.body()
	if body == nil {
		return nil, fmt.Errorf("unexpected page body %T", p.Body)
	}
	raw, ok := body[p.key]
	if !ok || raw == nil {
		return nil, nil
	}
	items, ok := raw.([]any)
	if !ok {
		return nil, fmt.Errorf("page key %q holds %T, not a list", p.key, raw)
	}
	return items, nil
}

// IsEmpty implements pagination.Page.
func (p rawPage) IsEmpty() (bool, error) {
	items, err := p.items()
	return len(items) == 0, err
}

// NextPageURL implements pagination.Page.
func (p rawPage) NextPageURL() (string, error) {
	body := p.body()
	if body == nil {
		return "", nil
	}

	// nova, neutron, cinder: "<key>_links": [{"rel": "next", "href": ...}]
	if next := nextFromLinkList(body[p.key+"_links"]); next != "" {
		return next, nil
	}
	switch links := body["links"].(type) {
	case map[string]any:
		// keystone: "links": {"next": ...}
		if next, ok := links["next"].(string); ok {
			return next, nil
		}
	case []any:
		if next := nextFromLinkList(links); next != "" {
			return next, nil
		}
	}
	// glance, magnum: "next": "/v2/images?marker=..."
	if next, ok := body["next"].(string); ok && next != "" {
		ref, err := url.Parse(next)
		if err != nil {
			return "", err
		}
		return p.URL.ResolveReference(ref).String(), nil
	}
	return "", nil
}

func nextFromLinkList(v any) string {
	links, ok := v.([]any)
	if !ok {
		return ""
	}
	for _, l := range links {
		link, ok := l.(map[string]any)
		if !ok {
			continue
		}
		if rel, _ := link["rel"].(string); rel == "next" {
			href, _ := link["href"].(string)
			return href
		}
	}
	return ""
}
