package api

import "fmt"

// Endpoint paths consumed by the services. Parameterized paths get helpers
// so callers never format them ad hoc.
const (
	EPLogin          = "/api/auth/login"
	EPRegister       = "/api/auth/register"
	EPLogout         = "/api/auth/logout"
	EPForgotPassword = "/api/auth/forgot-password"
	EPResetPassword  = "/api/auth/reset-password"

	EPProducts           = "/api/products"
	EPProductSearch      = "/api/products/search"
	EPProductCategories  = "/api/products/categories"
	EPProductUploadImage = "/api/products/upload-image"

	EPCart      = "/api/cart"
	EPCartItems = "/api/cart/items"

	EPOrders   = "/api/orders"
	EPMyOrders = "/api/orders/my-orders"

	EPWallet             = "/api/wallet"
	EPWalletDeposit      = "/api/wallet/deposit"
	EPWalletTransactions = "/api/wallet/transactions"

	EPUsers    = "/api/users"
	EPComments = "/api/comments"
)

func EPProduct(id string) string { return fmt.Sprintf("%s/%s", EPProducts, id) }

func EPCartItem(productID string) string { return fmt.Sprintf("%s/%s", EPCartItems, productID) }

func EPOrder(id string) string { return fmt.Sprintf("%s/%s", EPOrders, id) }

func EPOrderStatus(id string) string { return fmt.Sprintf("%s/%s/status", EPOrders, id) }

func EPOrdersOfUser(userID string) string { return fmt.Sprintf("%s/user/%s", EPOrders, userID) }

func EPUserPromote(id string) string { return fmt.Sprintf("%s/%s/promote", EPUsers, id) }

func EPUserRevoke(id string) string { return fmt.Sprintf("%s/%s/revoke", EPUsers, id) }

func EPOrderRating(orderID string) string { return fmt.Sprintf("/api/ratings/orders/%s", orderID) }
