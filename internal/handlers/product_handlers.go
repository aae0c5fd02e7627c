package handlers

import (
	"encoding/json"
	"net/http"
	"sort"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/01moynul/calibration-catalog/internal/catalog"
	"github.com/01moynul/calibration-catalog/internal/models"
	"github.com/01moynul/calibration-catalog/internal/storage"
	"github.com/01moynul/calibration-catalog/internal/store"
)

// productQuery reads the public filter parameters shared by the product
// list and the catalog page.
func productQuery(c *gin.Context) (store.ProductFilter, catalog.Query, bool) {
	var f store.ProductFilter
	if raw := c.Query("subcategoryId"); raw != "" {
		id, err := strconv.ParseUint(raw, 10, 32)
		if err != nil || id == 0 {
			respondError(c, http.StatusBadRequest, "Invalid subcategoryId", raw)
			return f, catalog.Query{}, false
		}
		f.SubcategoryID = uint(id)
	}
	if raw := c.Query("featured"); raw != "" {
		featured, err := strconv.ParseBool(raw)
		if err != nil {
			respondError(c, http.StatusBadRequest, "Invalid featured flag", raw)
			return f, catalog.Query{}, false
		}
		f.FeaturedOnly = featured
	}
	q := catalog.Query{
		Main:   c.Query("category"),
		Sub:    c.Query("subcategory"),
		Search: c.Query("search"),
	}
	return f, q, true
}

// ListProducts handles GET /api/products
func (h *Handlers) ListProducts(c *gin.Context) {
	f, q, ok := productQuery(c)
	if !ok {
		return
	}

	products, err := h.Store.ListProducts(c.Request.Context(), f)
	if err != nil {
		respondInternal(c, "Failed to fetch products", err)
		return
	}
	c.JSON(http.StatusOK, catalog.Filter(products, q))
}

// GetProduct handles GET /api/products/:id
// Every read counts as a view.
func (h *Handlers) GetProduct(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	p, err := h.Store.GetProduct(c.Request.Context(), id, true)
	if err != nil {
		respondStoreError(c, err, "Product")
		return
	}
	c.JSON(http.StatusOK, p)
}

// GetCatalog handles GET /api/catalog
// It returns everything the catalog page needs in one call. Without a
// category parameter the first category is active.
func (h *Handlers) GetCatalog(c *gin.Context) {
	f, q, ok := productQuery(c)
	if !ok {
		return
	}
	ctx := c.Request.Context()

	// 1. Categories and the active one
	categories, err := h.Store.ListCategories(ctx)
	if err != nil {
		respondInternal(c, "Failed to fetch categories", err)
		return
	}
	q = q.Normalized()
	if q.Main == "" && len(categories) > 0 {
		q.Main = categories[0].Name
	}

	paths := []catalog.PathEntry{}
	for _, cat := range categories {
		if cat.Name == q.Main {
			paths = cat.Paths
			break
		}
	}

	// 2. Products of the active selection
	products, err := h.Store.ListProducts(ctx, f)
	if err != nil {
		respondInternal(c, "Failed to fetch products", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"categories": categories,
		"activeMain": q.Main,
		"activeSub":  q.Sub,
		"paths":      paths,
		"products":   catalog.Filter(products, q),
	})
}

// CreateProduct handles POST /api/products (multipart)
func (h *Handlers) CreateProduct(c *gin.Context) {
	// 1. Bind and decode the form
	var form models.ProductForm
	if err := c.ShouldBind(&form); err != nil {
		respondValidation(c, err)
		return
	}
	fields, err := form.Decode()
	if err != nil {
		respondError(c, http.StatusBadRequest, "Validation failed", err.Error())
		return
	}

	// 2. Save uploads
	images, err := h.saveFiles(c, "images", storage.KindProductImage)
	if err != nil {
		respondUploadError(c, err)
		return
	}
	uploaded := images
	catalogPdf, err := h.saveFile(c, "catalogPdf", storage.KindCatalog)
	if err != nil {
		h.Files.RemoveAll(uploaded...)
		respondUploadError(c, err)
		return
	}
	uploaded = append(uploaded, catalogPdf)
	datasheetPdf, err := h.saveFile(c, "datasheetPdf", storage.KindCatalog)
	if err != nil {
		h.Files.RemoveAll(uploaded...)
		respondUploadError(c, err)
		return
	}
	uploaded = append(uploaded, datasheetPdf)

	// 3. Insert; the uploads go away again if the row does not
	p, err := h.Store.CreateProduct(c.Request.Context(), fields, form.Attribution(), images, catalogPdf, datasheetPdf)
	if err != nil {
		h.Files.RemoveAll(uploaded...)
		respondStoreError(c, err, "Product")
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Product created successfully",
		"product": p,
	})
}

// UpdateProduct handles PUT /api/products/:id (multipart)
// Images not listed in existingImages are dropped; new files are appended.
func (h *Handlers) UpdateProduct(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	// 1. Bind and decode the form
	var form models.ProductForm
	if err := c.ShouldBind(&form); err != nil {
		respondValidation(c, err)
		return
	}
	fields, err := form.Decode()
	if err != nil {
		respondError(c, http.StatusBadRequest, "Validation failed", err.Error())
		return
	}
	keep, err := form.KeepImages()
	if err != nil {
		respondError(c, http.StatusBadRequest, "Validation failed", err.Error())
		return
	}
	upd := store.ProductUpdate{Fields: fields, Attribution: form.Attribution(), KeepImages: keep}

	// 2. Save uploads
	upd.NewImages, err = h.saveFiles(c, "images", storage.KindProductImage)
	if err != nil {
		respondUploadError(c, err)
		return
	}
	uploaded := upd.NewImages
	upd.CatalogPdfURL, err = h.replacementDocument(c, "catalogPdf", form.RemoveCatalogPdf)
	if err != nil {
		h.Files.RemoveAll(uploaded...)
		respondUploadError(c, err)
		return
	}
	if upd.CatalogPdfURL != nil {
		uploaded = append(uploaded, *upd.CatalogPdfURL)
	}
	upd.DatasheetPdfURL, err = h.replacementDocument(c, "datasheetPdf", form.RemoveDatasheet)
	if err != nil {
		h.Files.RemoveAll(uploaded...)
		respondUploadError(c, err)
		return
	}
	if upd.DatasheetPdfURL != nil {
		uploaded = append(uploaded, *upd.DatasheetPdfURL)
	}

	// 3. Update, then clean up files nothing points at anymore
	p, removed, err := h.Store.UpdateProduct(c.Request.Context(), id, upd)
	if err != nil {
		h.Files.RemoveAll(uploaded...)
		respondStoreError(c, err, "Product")
		return
	}
	h.Files.RemoveAll(removed...)

	c.JSON(http.StatusOK, gin.H{
		"message": "Product updated successfully",
		"product": p,
	})
}

// replacementDocument returns the new URL of a document field: the uploaded
// file, "" when the client asked for removal, or nil to keep the current one.
func (h *Handlers) replacementDocument(c *gin.Context, field string, remove bool) (*string, error) {
	url, err := h.saveFile(c, field, storage.KindCatalog)
	if err != nil {
		return nil, err
	}
	if url != "" || remove {
		return &url, nil
	}
	return nil, nil
}

// DeleteProduct handles DELETE /api/products/:id
func (h *Handlers) DeleteProduct(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	files, err := h.Store.DeleteProduct(c.Request.Context(), id)
	if err != nil {
		respondStoreError(c, err, "Product")
		return
	}
	h.Files.RemoveAll(files...)
	c.JSON(http.StatusOK, gin.H{"message": "Product deleted successfully"})
}

// UpdateProductRanks handles PUT /api/products/rank
// The body is an array of {id, rank}. Bad entries are skipped and reported;
// the request fails only when no entry is usable.
func (h *Handlers) UpdateProductRanks(c *gin.Context) {
	// 1. Bind the raw entries
	var entries []json.RawMessage
	if err := c.ShouldBindJSON(&entries); err != nil {
		respondError(c, http.StatusBadRequest, "Body must be an array of {id, rank}", err.Error())
		return
	}
	if len(entries) == 0 {
		respondError(c, http.StatusBadRequest, "No rank updates provided")
		return
	}

	// 2. Validate, then apply what is valid
	valid, skipped := catalog.ParseRankBatch(entries)
	if len(valid) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{
			"message": "No valid rank updates",
			"updated": []catalog.RankUpdate{},
			"skipped": skipped,
		})
		return
	}
	applied, failed := h.Store.UpdateRanks(c.Request.Context(), valid)
	skipped = append(skipped, failed...)

	c.JSON(http.StatusOK, catalog.RankReport{Updated: applied, Skipped: sortSkipped(skipped)})
}

// sortSkipped orders skip reports by their position in the request.
func sortSkipped(s []catalog.SkippedRank) []catalog.SkippedRank {
	sort.SliceStable(s, func(i, j int) bool { return s[i].Index < s[j].Index })
	return s
}
