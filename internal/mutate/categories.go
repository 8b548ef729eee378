package mutate

import (
	"context"

	"taskdeck/internal/model"
	"taskdeck/internal/remote"
)

// Categories returns the last category list loaded from the service.
func (c *Controller) Categories() []model.Category {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]model.Category(nil), c.categories...)
}

// Category looks up a loaded category by id.
func (c *Controller) Category(id string) (model.Category, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, cat := range c.categories {
		if cat.ID == id {
			return cat, true
		}
	}
	return model.Category{}, false
}

func (c *Controller) setCategories(cats []model.Category) {
	c.mu.Lock()
	c.categories = append([]model.Category(nil), cats...)
	c.mu.Unlock()
}

// Category mutations are not optimistic; the list changes once the service confirms.

func (c *Controller) CreateCategory(ctx context.Context, in model.CategoryInput) *model.Category {
	cat, err := c.svc.CreateCategory(detach(ctx), in)
	if err != nil {
		c.log.Warn().Err(err).Msg("create category rejected")
		c.notify.Error(remote.Message(err, "Failed to create category"))
		return nil
	}
	c.mu.Lock()
	c.categories = append(c.categories, cat)
	c.mu.Unlock()
	c.notify.Success("Category created")
	return &cat
}

func (c *Controller) UpdateCategory(ctx context.Context, id string, patch model.CategoryPatch) *model.Category {
	cat, err := c.svc.UpdateCategory(detach(ctx), id, patch)
	if err == nil && cat == nil {
		err = remote.NotFound("category", id)
	}
	if err != nil {
		c.log.Warn().Err(err).Str("id", id).Msg("update category rejected")
		c.notify.Error(remote.Message(err, "Failed to update category"))
		return nil
	}
	c.mu.Lock()
	for i := range c.categories {
		if c.categories[i].ID == id {
			c.categories[i] = *cat
		}
	}
	c.mu.Unlock()
	c.notify.Success("Category updated")
	return cat
}

// DeleteCategory leaves tasks that reference the category untouched.
func (c *Controller) DeleteCategory(ctx context.Context, id string) bool {
	ok, err := c.svc.DeleteCategory(detach(ctx), id)
	if err == nil && !ok {
		err = remote.NotFound("category", id)
	}
	if err != nil {
		c.log.Warn().Err(err).Str("id", id).Msg("delete category rejected")
		c.notify.Error(remote.Message(err, "Failed to delete category"))
		return false
	}
	c.mu.Lock()
	kept := c.categories[:0:0]
	for _, cat := range c.categories {
		if cat.ID != id {
			kept = append(kept, cat)
		}
	}
	c.categories = kept
	c.mu.Unlock()
	c.notify.Success("Category deleted")
	return true
}
