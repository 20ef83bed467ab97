package catalog

import "github.com/baechuer/paradies-dashboard/internal/domain"

var items = []domain.CatalogItem{
	{Image: "evisu 1.jpg", Title: "Evisu Premium Shirt", Description: "Discover the premium style of Evisu shirts."},
	{Image: "evisu 2.jpg", Title: "Evisu Lit Jacket", Description: "Step out in iconic Evisu jeans for any occasion."},
	{Image: "evisu 3.jpg", Title: "Evisu x Affliction", Description: "Stay warm and stylish with Evisu jackets."},
	{Image: "evisu 4.jpg", Title: "Evisu Lit Shirt", Description: "Experience comfort and quality with Evisu shorts."},
	{Image: "evisu 5.jpg", Title: "Evisu Graphic Tee", Description: "Show off bold designs with Evisu graphic t-shirts."},
	{Image: "evisu 6.jpg", Title: "Evisu Denim Jeans", Description: "Upgrade your wardrobe with Evisu’s signature denim."},
	{Image: "evisu 7.jpg", Title: "Evisu Hoodie", Description: "Stay cozy with Evisu’s premium hoodies, perfect for any weather."},
	{Image: "evisu 8.jpg", Title: "Evisu Classic Cap", Description: "Complete your outfit with an Evisu classic cap."},
	{Image: "evisu 9.jpg", Title: "Evisu Slides", Description: "Relax in comfort and style with Evisu branded slides."},
}

// Items returns the promotional items shown on the dashboard. The slice is a
// copy; callers may modify it.
func Items() []domain.CatalogItem {
	out := make([]domain.CatalogItem, len(items))
	copy(out, items)
	return out
}
