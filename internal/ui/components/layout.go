package components

// DatastarScript is the client runtime the pages load.
const DatastarScript = "https://cdn.jsdelivr.net/gh/starfederation/datastar@1.0.0/bundles/datastar.js"

// NavItem is one entry of the resource navigation.
type NavItem struct {
	Name   string
	Title  string
	Active bool
}

// PageData describes a full page.
type PageData struct {
	Title    string
	Resource string
	Nav      []NavItem
	IsDev    bool
}
