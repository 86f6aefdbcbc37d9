package backend

// Menu service endpoints.
const (
	ItemsPath      = "/items"
	CategoriesPath = "/categories"
	menuHealthPath = "/menu/health"
)

// MenuClient talks to the menu service. Item and category lists are read
// through Get and decoded by the aggregation layer.
type MenuClient struct {
	*Client
}
