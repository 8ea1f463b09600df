package models

import "github.com/gosimple/slug"

// 由名稱產生網址用的slug(小寫，以-連接)
func Slugify(name string) string {
	return slug.Make(name)
}
