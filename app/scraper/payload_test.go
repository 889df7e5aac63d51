package scraper

import (
	"fmt"
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
)

func docFromHTML(t *testing.T, html string) *goquery.Document {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		t.Fatalf("Failed to parse test HTML: %v", err)
	}
	return doc
}

func listingHTML(key string, items string) string {
	return fmt.Sprintf(`<html><body>
		<script id="__NEXT_DATA__" type="application/json">
		{"props":{"pageProps":{"complaints":{%q:%s}}}}
		</script>
	</body></html>`, key, items)
}

func TestListingPayloadItems_LastKey(t *testing.T) {
	doc := docFromHTML(t, listingHTML("LAST", `[
		{"id":"111","title":"Pedido atrasado","description":"Meu pedido não chegou","userName":"Ana Silva","status":"NOT_REPLIED","created":"2024-03-15T10:30:00","url":"/pedido-atrasado_ABC111"},
		{"id":"222","title":"Produto errado","description":"Veio outro item","userName":"João Souza","status":"SOLVED","created":"2024-03-14T09:00:00","url":"/produto-errado_ABC222"}
	]`))

	items := listingPayloadItems(doc)
	if len(items) != 2 {
		t.Fatalf("Expected 2 items, got %d", len(items))
	}
	if items[0].ID.String() != "111" {
		t.Errorf("Expected id 111, got %s", items[0].ID.String())
	}
	if items[1].Status != "SOLVED" {
		t.Errorf("Expected status SOLVED, got %s", items[1].Status)
	}
}

func TestListingPayloadItems_AlternateKeys(t *testing.T) {
	for _, key := range []string{"data", "items", "list"} {
		doc := docFromHTML(t, listingHTML(key, `[{"id":"5","title":"t","description":"d"}]`))
		items := listingPayloadItems(doc)
		if len(items) != 1 {
			t.Errorf("Key %q: expected 1 item, got %d", key, len(items))
		}
	}
}

func TestListingPayloadItems_MissingPayload(t *testing.T) {
	doc := docFromHTML(t, `<html><body><p>no data here</p></body></html>`)
	if items := listingPayloadItems(doc); items != nil {
		t.Errorf("Expected nil for missing payload, got %d items", len(items))
	}
}

func TestListingPayloadItems_MalformedJSON(t *testing.T) {
	doc := docFromHTML(t, `<html><body>
		<script id="__NEXT_DATA__">{"props": this is not json</script>
	</body></html>`)
	if items := listingPayloadItems(doc); items != nil {
		t.Errorf("Expected nil for malformed payload, got %d items", len(items))
	}
}

func TestListingItemRecord_StatusAndDate(t *testing.T) {
	it := listingItem{
		ID:          "333",
		Title:       "  Título   com espaços  ",
		Description: "Descrição do problema",
		UserName:    "Maria",
		UserCity:    "São Paulo",
		UserState:   "SP",
		Status:      "IN_REPLICA",
		Created:     "2024-03-15T10:30:00",
	}
	rec := it.record()

	if rec.ExternalID != "333" {
		t.Errorf("Expected external id 333, got %s", rec.ExternalID)
	}
	if rec.Title != "Título com espaços" {
		t.Errorf("Expected whitespace-collapsed title, got %q", rec.Title)
	}
	if rec.Status != StatusInRebuttal {
		t.Errorf("Expected status %s, got %s", StatusInRebuttal, rec.Status)
	}
	if rec.Location != "São Paulo - SP" {
		t.Errorf("Expected joined location, got %q", rec.Location)
	}
	if rec.ComplaintDate.Day() != 15 {
		t.Errorf("Expected day 15, got %v", rec.ComplaintDate)
	}
}

func TestListingItemRecord_IDFromURLWhenMissing(t *testing.T) {
	it := listingItem{URL: "/minha-reclamacao_XYZ99"}
	rec := it.record()
	if rec.ExternalID != "XYZ99" {
		t.Errorf("Expected external id derived from URL, got %q", rec.ExternalID)
	}
}

func TestDetailPayloadComplaint_Interactions(t *testing.T) {
	doc := docFromHTML(t, `<html><body>
		<script id="__NEXT_DATA__" type="application/json">
		{"props":{"pageProps":{"complaint":{
			"id":"777",
			"title":"Cobrança duplicada",
			"description":"Fui cobrado duas vezes pelo mesmo pedido",
			"userName":"Carlos Lima",
			"userCity":"Recife","userState":"PE",
			"status":"EVALUATED",
			"created":"2024-02-01T08:00:00",
			"interactions":[
				{"type":"ANSWER","message":"Pedimos desculpas, o estorno foi feito.","created":"2024-02-02T10:00:00"},
				{"type":"REPLY","message":"segunda resposta ignorada","created":"2024-02-03T10:00:00"},
				{"type":"FINAL_ANSWER","message":"Problema resolvido, obrigado.","created":"2024-02-04T10:00:00"}
			]
		}}}}
		</script>
	</body></html>`)

	c := detailPayloadComplaint(doc)
	if c == nil {
		t.Fatal("Expected complaint payload, got nil")
	}
	rec := c.record()

	if rec.CompanyResponseText != "Pedimos desculpas, o estorno foi feito." {
		t.Errorf("Expected first ANSWER as company response, got %q", rec.CompanyResponseText)
	}
	if rec.CompanyResponseDate == nil || rec.CompanyResponseDate.Day() != 2 {
		t.Errorf("Expected response date Feb 2, got %v", rec.CompanyResponseDate)
	}
	if rec.CustomerEvaluation != "Problema resolvido, obrigado." {
		t.Errorf("Expected FINAL_ANSWER as evaluation, got %q", rec.CustomerEvaluation)
	}
	if rec.Status != StatusEvaluated {
		t.Errorf("Expected status %s, got %s", StatusEvaluated, rec.Status)
	}
}

func TestExternalIDFromPath(t *testing.T) {
	tests := map[string]string{
		"/produto-nao-entregue_ABC123/": "ABC123",
		"produto-nao-entregue_ABC123":   "ABC123",
		"/loja/reclamacao_R1":           "R1",
		"sem-underscore":                "sem-underscore",
	}
	for path, expected := range tests {
		if got := externalIDFromPath(path); got != expected {
			t.Errorf("externalIDFromPath(%q) = %q, expected %q", path, got, expected)
		}
	}
}

func TestJoinLocation(t *testing.T) {
	if got := joinLocation("Campinas", "SP"); got != "Campinas - SP" {
		t.Errorf("Expected joined city and state, got %q", got)
	}
	if got := joinLocation("", "RJ"); got != "RJ" {
		t.Errorf("Expected state only, got %q", got)
	}
	if got := joinLocation("Niterói", ""); got != "Niterói" {
		t.Errorf("Expected city only, got %q", got)
	}
}
