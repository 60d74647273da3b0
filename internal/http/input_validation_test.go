package handlers_test

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCheckoutValidation(t *testing.T) {
	ta := newTestApp(t, noLimits())

	item := func(mut func(map[string]any)) func(map[string]any) {
		return func(body map[string]any) {
			mut(body["items"].([]map[string]any)[0])
		}
	}
	cases := []struct {
		name string
		mut  func(map[string]any)
		want string
	}{
		{"missing phone", func(b map[string]any) { delete(b, "phone") }, "phone is required"},
		{"bad phone", func(b map[string]any) { b["phone"] = "call me" }, "phone must be a valid phone number"},
		{"blank location", func(b map[string]any) { b["locationText"] = "   " }, "locationText is required"},
		{"bad payee email", func(b map[string]any) { b["payeeEmail"] = "nope" }, "payeeEmail must be a valid email"},
		{"no items", func(b map[string]any) { b["items"] = []map[string]any{} }, "items must contain at least 1 entries"},
		{"zero quantity", item(func(i map[string]any) { i["quantity"] = 0 }), "items[0].quantity must be at least 1"},
		{"missing product", item(func(i map[string]any) { delete(i, "productId") }), "items[0].productId is required"},
		{"bad topping ref", item(func(i map[string]any) { i["toppings"] = []map[string]any{{"toppingId": 0}} }), "items[0].toppings[0].toppingId is required"},
		{"odd sugar level", item(func(i map[string]any) { i["sugarLevel"] = "<script>" }), "items[0].sugarLevel is invalid"},
		{"unknown product", item(func(i map[string]any) { i["productId"] = 99999 }), "Product 99999 not found"},
		{"variant of another product", item(func(i map[string]any) { i["variantId"] = 99999 }), "Variant 99999 is not valid for Chicken Shawarma"},
		{"missing variant", item(func(i map[string]any) { delete(i, "variantId") }), "Chicken Shawarma requires a variant selection"},
		{"unknown topping", item(func(i map[string]any) { i["toppings"] = []map[string]any{{"toppingId": 99999}} }), "Topping 99999 not found"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			body := ta.cart(t)
			tc.mut(body)
			resp := ta.do(t, "POST", "/orders/checkout", body, "")
			require.Equal(t, http.StatusBadRequest, resp.StatusCode)
			assert.Equal(t, tc.want, decode[map[string]string](t, resp)["error"])
		})
	}
	assert.Empty(t, ta.gw.checkouts, "invalid carts never reach the provider")
}

func TestCheckoutMalformedJSON(t *testing.T) {
	ta := newTestApp(t, noLimits())
	for _, body := range []string{``, `{`, `[]`, `{"phone": 5}`} {
		resp := ta.do(t, "POST", "/orders/checkout", body, "")
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode, "body %q", body)
	}
}
