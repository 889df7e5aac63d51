package scraper

import (
	"encoding/json"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// The target is a Next.js application and ships the data that rendered each
// page inside a script#__NEXT_DATA__ JSON blob. Reading that blob is the
// primary extraction strategy: it survives markup redesigns and carries
// fields the visible page omits. Markup selectors are the fallback.

const nextDataSelector = "script#__NEXT_DATA__"

type listingItem struct {
	ID          json.Number `json:"id"`
	Title       string      `json:"title"`
	Description string      `json:"description"`
	UserName    string      `json:"userName"`
	UserCity    string      `json:"userCity"`
	UserState   string      `json:"userState"`
	Status      string      `json:"status"`
	Created     string      `json:"created"`
	URL         string      `json:"url"`
}

type detailInteraction struct {
	Type    string `json:"type"`
	Message string `json:"message"`
	Created string `json:"created"`
}

type detailComplaint struct {
	ID           json.Number         `json:"id"`
	Title        string              `json:"title"`
	Description  string              `json:"description"`
	UserName     string              `json:"userName"`
	UserCity     string              `json:"userCity"`
	UserState    string              `json:"userState"`
	Status       string              `json:"status"`
	Created      string              `json:"created"`
	Interactions []detailInteraction `json:"interactions"`
}

func nextDataJSON(doc *goquery.Document) []byte {
	raw := strings.TrimSpace(doc.Find(nextDataSelector).Text())
	if raw == "" {
		return nil
	}
	return []byte(raw)
}

// listingPayloadItems extracts the complaint list from the embedded JSON.
// The list lives under props.pageProps.complaints, but the key holding the
// actual slice has changed across site deployments, so several are probed.
func listingPayloadItems(doc *goquery.Document) []listingItem {
	raw := nextDataJSON(doc)
	if raw == nil {
		return nil
	}
	var payload struct {
		Props struct {
			PageProps struct {
				Complaints map[string]json.RawMessage `json:"complaints"`
			} `json:"pageProps"`
		} `json:"props"`
	}
	if err := json.Unmarshal(raw, &payload); err != nil {
		return nil
	}
	for _, key := range []string{"LAST", "data", "items", "list"} {
		blob, ok := payload.Props.PageProps.Complaints[key]
		if !ok {
			continue
		}
		var items []listingItem
		if err := json.Unmarshal(blob, &items); err == nil && len(items) > 0 {
			return items
		}
	}
	return nil
}

// detailPayloadComplaint extracts the single complaint object from a detail
// page's embedded JSON, or nil when the blob is missing or malformed.
func detailPayloadComplaint(doc *goquery.Document) *detailComplaint {
	raw := nextDataJSON(doc)
	if raw == nil {
		return nil
	}
	var payload struct {
		Props struct {
			PageProps struct {
				Complaint *detailComplaint `json:"complaint"`
			} `json:"pageProps"`
		} `json:"props"`
	}
	if err := json.Unmarshal(raw, &payload); err != nil {
		return nil
	}
	return payload.Props.PageProps.Complaint
}

func (it listingItem) record() ComplaintRecord {
	rec := ComplaintRecord{
		ExternalID:    it.ID.String(),
		URLSlug:       strings.Trim(it.URL, "/"),
		Title:         cleanText(it.Title),
		Text:          cleanText(it.Description),
		UserName:      cleanText(it.UserName),
		Location:      joinLocation(it.UserCity, it.UserState),
		Status:        normalizeStatus(it.Status),
		ComplaintDate: parseComplaintDate(it.Created),
	}
	if rec.ExternalID == "" && rec.URLSlug != "" {
		rec.ExternalID = externalIDFromPath(rec.URLSlug)
	}
	return rec
}

func (c *detailComplaint) record() ComplaintRecord {
	rec := ComplaintRecord{
		ExternalID:    c.ID.String(),
		Title:         cleanText(c.Title),
		Text:          cleanText(c.Description),
		UserName:      cleanText(c.UserName),
		Location:      joinLocation(c.UserCity, c.UserState),
		Status:        normalizeStatus(c.Status),
		ComplaintDate: parseComplaintDate(c.Created),
	}
	// The first company reply becomes the response; the first closing
	// interaction becomes the customer evaluation.
	for _, in := range c.Interactions {
		switch strings.ToUpper(in.Type) {
		case "ANSWER", "REPLY":
			if rec.CompanyResponseText == "" {
				rec.CompanyResponseText = cleanText(in.Message)
				d := parseComplaintDate(in.Created)
				rec.CompanyResponseDate = &d
			}
		case "FINAL_ANSWER", "EVALUATION":
			if rec.CustomerEvaluation == "" {
				rec.CustomerEvaluation = cleanText(in.Message)
				d := parseComplaintDate(in.Created)
				rec.EvaluationDate = &d
			}
		}
	}
	return rec
}

func joinLocation(city, state string) string {
	city = cleanText(city)
	state = cleanText(state)
	switch {
	case city != "" && state != "":
		return city + " - " + state
	case city != "":
		return city
	default:
		return state
	}
}

// externalIDFromPath derives the identifier from a complaint URL path. The
// site appends the ID to the slug after the final underscore, e.g.
// produto-nao-entregue_XYZ12345.
func externalIDFromPath(path string) string {
	path = strings.Trim(path, "/")
	if i := strings.LastIndex(path, "/"); i >= 0 {
		path = path[i+1:]
	}
	if i := strings.LastIndex(path, "_"); i >= 0 && i < len(path)-1 {
		return path[i+1:]
	}
	return path
}
