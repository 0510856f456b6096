package handlers

import (
	"github.com/shopspring/decimal"

	"ecommerce-api/internal/domain"
	"ecommerce-api/internal/service/order"
	"ecommerce-api/internal/service/user"
)

func money(d decimal.Decimal) string { return d.StringFixed(2) }

func ids(in []int64) []int64 {
	if in == nil {
		return []int64{}
	}
	return in
}

func toPageDTO[T, D any](p domain.Page[T], conv func(T) D) pageDTO[D] {
	out := make([]D, 0, len(p.Data))
	for _, v := range p.Data {
		out = append(out, conv(v))
	}
	return pageDTO[D]{
		Total:    p.Total,
		PerPage:  p.PerPage,
		Page:     p.Page,
		LastPage: p.LastPage,
		Data:     out,
	}
}

func toImageDTO(img domain.Image, url URLFunc) imageDTO {
	return imageDTO{
		ID:           img.ID,
		Path:         img.Path,
		URL:          url(img.Path),
		Size:         img.Size,
		OriginalName: img.OriginalName,
		Extension:    img.Extension,
		CreatedAt:    img.CreatedAt,
		UpdatedAt:    img.UpdatedAt,
	}
}

func toImageRef(img *domain.Image, url URLFunc) *imageDTO {
	if img == nil {
		return nil
	}
	dto := toImageDTO(*img, url)
	return &dto
}

func toCategoryDTO(c domain.Category, url URLFunc) categoryDTO {
	return categoryDTO{
		ID:          c.ID,
		Title:       c.Title,
		Description: c.Description,
		ImageID:     c.ImageID,
		Image:       toImageRef(c.Image, url),
		CreatedAt:   c.CreatedAt,
		UpdatedAt:   c.UpdatedAt,
	}
}

func (r createCategoryRequest) toModel() *domain.Category {
	return &domain.Category{Title: r.Title, Description: r.Description, ImageID: r.ImageID}
}

func (r updateCategoryRequest) toModel(id int64) domain.PartialCategoryUpdate {
	return domain.PartialCategoryUpdate{ID: id, Title: r.Title, Description: r.Description, ImageID: r.ImageID}
}

func toProductDTO(p domain.Product, url URLFunc) productDTO {
	return productDTO{
		ID:          p.ID,
		Name:        p.Name,
		Description: p.Description,
		Price:       money(p.Price),
		ImageID:     p.ImageID,
		Image:       toImageRef(p.Image, url),
		Categories:  ids(p.CategoryIDs),
		Images:      ids(p.ImageIDs),
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
}

func (r createProductRequest) toModel() *domain.Product {
	return &domain.Product{
		Name:        r.Name,
		Description: r.Description,
		Price:       r.Price,
		ImageID:     r.ImageID,
		CategoryIDs: r.Categories,
		ImageIDs:    r.Images,
	}
}

func (r updateProductRequest) toModel(id int64) domain.PartialProductUpdate {
	return domain.PartialProductUpdate{
		ID:          id,
		Name:        r.Name,
		Description: r.Description,
		Price:       r.Price,
		ImageID:     r.ImageID,
		CategoryIDs: r.Categories,
		ImageIDs:    r.Images,
	}
}

// toUserDTO never exposes the password hash.
func toUserDTO(u domain.User) userDTO {
	return userDTO{
		ID:        u.ID,
		Name:      u.Name,
		Surname:   u.Surname,
		Email:     u.Email,
		ImageID:   u.ImageID,
		Roles:     u.RoleSlugs(),
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}

func (r createUserRequest) toInput() user.CreateInput {
	return user.CreateInput{
		Name:     r.Name,
		Surname:  r.Surname,
		Email:    r.Email,
		Password: r.Password,
		ImageID:  r.ImageID,
		Roles:    r.Roles,
	}
}

func (r updateUserRequest) toInput(id int64) user.UpdateInput {
	return user.UpdateInput{
		ID:       id,
		Name:     r.Name,
		Surname:  r.Surname,
		Email:    r.Email,
		Password: r.Password,
		ImageID:  r.ImageID,
		Roles:    r.Roles,
	}
}

func toCouponDTO(c domain.Coupon) couponDTO {
	return couponDTO{
		ID:         c.ID,
		Code:       c.Code,
		Discount:   money(c.Discount),
		ValidFrom:  c.ValidFrom,
		ValidUntil: c.ValidUntil,
		Quantity:   c.Quantity,
		Type:       string(c.Type),
		CanUseFor:  string(c.CanUseFor),
		Recursive:  c.Recursive,
		Users:      ids(c.UserIDs),
		Products:   ids(c.ProductIDs),
		CreatedAt:  c.CreatedAt,
		UpdatedAt:  c.UpdatedAt,
	}
}

func (r createCouponRequest) toModel() *domain.Coupon {
	c := &domain.Coupon{
		Code:       r.Code,
		Discount:   r.Discount,
		ValidUntil: r.ValidUntil,
		Quantity:   r.Quantity,
		Type:       domain.CouponType(r.Type),
		Recursive:  r.Recursive,
		UserIDs:    r.Users,
		ProductIDs: r.Products,
	}
	if r.ValidFrom != nil {
		c.ValidFrom = *r.ValidFrom
	}
	return c
}

func (r updateCouponRequest) toModel(id int64) domain.PartialCouponUpdate {
	u := domain.PartialCouponUpdate{
		ID:         id,
		Code:       r.Code,
		Discount:   r.Discount,
		ValidFrom:  r.ValidFrom,
		Quantity:   r.Quantity,
		Recursive:  r.Recursive,
		UserIDs:    r.Users,
		ProductIDs: r.Products,
	}
	if r.ValidUntil.Set {
		u.ValidUntil = r.ValidUntil.Value
		u.ClearValidUntil = r.ValidUntil.Value == nil
	}
	if r.Type != nil {
		t := domain.CouponType(*r.Type)
		u.Type = &t
	}
	return u
}

func toDiscountDTO(d domain.Discount) discountDTO {
	return discountDTO{
		ID:       d.ID,
		CouponID: d.CouponID,
		OrderID:  d.OrderID,
		Code:     d.Code,
		Discount: money(d.Amount),
	}
}

func toOrderDTO(o domain.Order) orderDTO {
	items := make([]orderItemDTO, 0, len(o.Items))
	for _, it := range o.Items {
		items = append(items, orderItemDTO{
			ID:        it.ID,
			ProductID: it.ProductID,
			Quantity:  it.Quantity,
			Subtotal:  money(it.Subtotal),
		})
	}
	discounts := make([]discountDTO, 0, len(o.Discounts))
	coupons := make([]orderCouponDTO, 0, len(o.Discounts))
	for _, d := range o.Discounts {
		discounts = append(discounts, toDiscountDTO(d))
		coupons = append(coupons, orderCouponDTO{ID: d.CouponID, Code: d.Code})
	}
	return orderDTO{
		ID:        o.ID,
		UserID:    o.UserID,
		Status:    string(o.Status),
		Subtotal:  money(o.Subtotal()),
		Discount:  money(o.DiscountTotal()),
		Total:     money(o.Total()),
		QtyItems:  o.QtyItems(),
		Items:     items,
		Coupons:   coupons,
		Discounts: discounts,
		CreatedAt: o.CreatedAt,
		UpdatedAt: o.UpdatedAt,
	}
}

func toItemInputs(in []orderItemRequest) []domain.ItemInput {
	if in == nil {
		return nil
	}
	out := make([]domain.ItemInput, 0, len(in))
	for _, it := range in {
		out = append(out, domain.ItemInput{ID: it.ID, ProductID: it.ProductID, Quantity: it.Quantity})
	}
	return out
}

func (r createOrderRequest) toInput() order.CreateInput {
	return order.CreateInput{
		UserID: r.UserID,
		Status: domain.OrderStatus(r.Status),
		Items:  toItemInputs(r.Items),
	}
}

func (r updateOrderRequest) toModel(id int64) domain.PartialOrderUpdate {
	u := domain.PartialOrderUpdate{ID: id, UserID: r.UserID, Items: toItemInputs(r.Items)}
	if r.Status != nil {
		st := domain.OrderStatus(*r.Status)
		u.Status = &st
	}
	return u
}
