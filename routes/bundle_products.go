package routes

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"

	"bloom/models"

	"gorm.io/gorm"
)

// ParseProductIDs accepts the shapes clients actually send for productIds: an
// array of numbers or strings (strings may themselves be comma-joined), a
// single comma-separated string, or a JSON-encoded array inside a string.
// Parsing is best-effort: entries that do not resolve to a positive integer
// are dropped, and duplicates collapse to one occurrence.
func ParseProductIDs(value interface{}) []uint {
	seen := make(map[uint]bool)
	var ids []uint
	add := func(id uint, ok bool) {
		if ok && !seen[id] {
			seen[id] = true
			ids = append(ids, id)
		}
	}

	switch v := value.(type) {
	case []interface{}:
		for _, entry := range v {
			if s, ok := entry.(string); ok {
				for _, part := range strings.Split(s, ",") {
					add(parseProductID(part))
				}
				continue
			}
			add(numericProductID(entry))
		}
	case []string:
		for _, entry := range v {
			for _, part := range strings.Split(entry, ",") {
				add(parseProductID(part))
			}
		}
	case string:
		var decoded []interface{}
		if err := json.Unmarshal([]byte(v), &decoded); err == nil {
			return ParseProductIDs(decoded)
		}
		for _, part := range strings.Split(v, ",") {
			add(parseProductID(part))
		}
	}

	return ids
}

func parseProductID(entry string) (uint, bool) {
	s := strings.TrimSpace(entry)
	if s == "" {
		return 0, false
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return numericProductID(f)
}

func numericProductID(entry interface{}) (uint, bool) {
	switch n := entry.(type) {
	case float64:
		if n <= 0 || n != math.Trunc(n) {
			return 0, false
		}
		return uint(n), true
	case int:
		if n <= 0 {
			return 0, false
		}
		return uint(n), true
	case uint:
		if n == 0 {
			return 0, false
		}
		return n, true
	case json.Number:
		return parseProductID(n.String())
	default:
		return 0, false
	}
}

// PartitionProductIDs splits ids into those with a matching product row and
// those without, using a single set-membership query against the catalog.
func PartitionProductIDs(gdb *gorm.DB, ids []uint) (valid []uint, missing []uint, err error) {
	if len(ids) == 0 {
		return nil, nil, nil
	}

	var existing []uint
	if err := gdb.Model(&models.Product{}).Where("id IN ?", ids).Pluck("id", &existing).Error; err != nil {
		return nil, nil, err
	}

	known := make(map[uint]bool, len(existing))
	for _, id := range existing {
		known[id] = true
	}
	for _, id := range ids {
		if known[id] {
			valid = append(valid, id)
		} else {
			missing = append(missing, id)
		}
	}
	return valid, missing, nil
}

// ReplaceBundleProducts swaps a bundle's product set: every existing
// association row is deleted, then one row per id is inserted. Must run
// inside the caller's transaction so readers never see a partial set. An
// empty id list detaches everything.
func ReplaceBundleProducts(tx *gorm.DB, bundleID uint, productIDs []uint) error {
	if err := tx.Where("bundle_id = ?", bundleID).Delete(&models.BundleProduct{}).Error; err != nil {
		return err
	}
	if len(productIDs) == 0 {
		return nil
	}

	rows := make([]models.BundleProduct, 0, len(productIDs))
	for _, id := range productIDs {
		rows = append(rows, models.BundleProduct{BundleID: bundleID, ProductID: id})
	}
	return tx.Create(&rows).Error
}

// AttachProducts resolves the product list for every bundle in the slice with
// a batched association fetch keyed by the full bundle id set, avoiding a
// per-bundle query. Association rows whose product no longer resolves are
// skipped; cascade cleanup owns those rows.
func AttachProducts(gdb *gorm.DB, bundles []models.Bundle) error {
	if len(bundles) == 0 {
		return nil
	}

	bundleIDs := make([]uint, 0, len(bundles))
	for _, bundle := range bundles {
		bundleIDs = append(bundleIDs, bundle.ID)
	}

	var links []models.BundleProduct
	if err := gdb.Where("bundle_id IN ?", bundleIDs).Find(&links).Error; err != nil {
		return err
	}

	productIDs := make([]uint, 0, len(links))
	seen := make(map[uint]bool, len(links))
	for _, link := range links {
		if !seen[link.ProductID] {
			seen[link.ProductID] = true
			productIDs = append(productIDs, link.ProductID)
		}
	}

	productsByID := make(map[uint]models.Product, len(productIDs))
	if len(productIDs) > 0 {
		var rows []models.Product
		if err := gdb.Where("id IN ?", productIDs).Find(&rows).Error; err != nil {
			return err
		}
		for _, product := range rows {
			productsByID[product.ID] = product
		}
	}

	grouped := make(map[uint][]models.Product, len(bundles))
	for _, link := range links {
		product, ok := productsByID[link.ProductID]
		if !ok {
			continue
		}
		grouped[link.BundleID] = append(grouped[link.BundleID], product)
	}

	for i := range bundles {
		list, ok := grouped[bundles[i].ID]
		if !ok {
			list = []models.Product{}
		}
		bundles[i].Products = list
		bundles[i].ProductIDs = make([]uint, 0, len(list))
		for _, product := range list {
			bundles[i].ProductIDs = append(bundles[i].ProductIDs, product.ID)
		}
	}
	return nil
}
