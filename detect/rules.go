// Package detect classifies HTTP responses and HTML bodies as block pages,
// CAPTCHA challenges, or script-dependent application shells. All functions
// are pure and total: absence of a signal is a nil verdict, never an error.
package detect

// BlockVerdict is the detector's positive classification. A nil *BlockVerdict
// means "no signal, proceed".
type BlockVerdict struct {
	Reason string
}

// statusRule maps an HTTP status condition to a block reason.
type statusRule struct {
	match  func(status int) bool
	reason string
}

// statusRules are checked in order; first match wins. Exact codes come
// before the >=500 catch-all so 503 classifies as service_unavailable.
var statusRules = []statusRule{
	{func(s int) bool { return s == 403 }, "forbidden"},
	{func(s int) bool { return s == 429 }, "rate_limited"},
	{func(s int) bool { return s == 503 }, "service_unavailable"},
	{func(s int) bool { return s >= 500 }, "server_error"},
}

// contentRule maps a set of lowercase indicator substrings to a block reason.
// A rule fires if any of its patterns occurs in the lowercased HTML.
type contentRule struct {
	reason   string
	patterns []string
}

// contentRules are checked in order; first matching rule wins. Challenge and
// CAPTCHA rules come before the generic WAF rule because block pages often
// contain both a challenge widget and a generic "access denied" phrase.
var contentRules = []contentRule{
	{
		reason: "cloudflare",
		patterns: []string{
			"just a moment",
			"checking your browser",
			"cf-browser-verification",
			"_cf_chl_opt",
			"cloudflare ray id",
		},
	},
	{
		reason: "captcha",
		patterns: []string{
			"recaptcha",
			"hcaptcha",
			"g-recaptcha",
			"captcha-container",
		},
	},
	{
		reason: "waf",
		patterns: []string{
			"access denied",
			"request blocked",
			"bot detected",
			"automated access",
			"security check",
		},
	},
	{
		reason: "perimeterx",
		patterns: []string{
			"perimeterx",
			"_pxhd",
		},
	},
	{
		reason: "datadome",
		patterns: []string{
			"datadome",
			"dd.js",
		},
	},
}

// spaMarkers are lowercase fragments indicating a client-side-rendered
// application shell with no server-rendered content.
var spaMarkers = []string{
	`<div id="root"></div>`,
	`<div id="app"></div>`,
	`<div id="__next"></div>`,
	`<div id="__nuxt"></div>`,
	"react-root",
	"vue-app",
	"angular-app",
}
