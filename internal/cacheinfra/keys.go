package cacheinfra

import "strconv"

// Key namespaces follow the source system's layout: one key per book
// snapshot and one per category membership set.
const (
	itemKeyPrefix = "book:info:"
	setKeyPrefix  = "category:books:"
)

func itemKey(id int64) string {
	return itemKeyPrefix + strconv.FormatInt(id, 10)
}

func setKey(categoryID int64) string {
	return setKeyPrefix + strconv.FormatInt(categoryID, 10)
}
