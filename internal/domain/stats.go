package domain

// SeedStats summarizes a seed run. A non-empty Errors list means partial success.
type SeedStats struct {
	CategoriesCreated int      `json:"categories_created"`
	ProductsCreated   int      `json:"products_created"`
	TagsCreated       int      `json:"tags_created"`
	ImagesDownloaded  int      `json:"images_downloaded"`
	Errors            []string `json:"errors"`
}

// WipeStats summarizes a tenant or global wipe. FilesDeleted is only set by global wipes.
type WipeStats struct {
	ProductsDeleted   int      `json:"products_deleted"`
	CategoriesDeleted int      `json:"categories_deleted"`
	TagsDeleted       int      `json:"tags_deleted"`
	FilesDeleted      int      `json:"files_deleted"`
	Errors            []string `json:"errors"`
}

// Counts is the number of rows per entity kind.
type Counts struct {
	Categories int `json:"categories"`
	Products   int `json:"products"`
	Tags       int `json:"tags"`
}
