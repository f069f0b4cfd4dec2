// cmd/shopctl/admin.go
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/ecstudy/shopctl/internal/model"
	"github.com/ecstudy/shopctl/internal/service"
)

// adminDispatch handles the admin-* subcommands. Every surface goes through
// the same HTTP client; the server decides what the session may do.
func adminDispatch(ctx context.Context, a *app, cmd string, args []string) {
	switch cmd {

	case "admin-products":
		fs := flag.NewFlagSet("admin-products", flag.ExitOnError)
		search := fs.String("search", "", "filter by name/category (client-side)")
		page := fs.Int("page", 1, "page number")
		_ = fs.Parse(args)
		list, err := a.catalog.Products(ctx, "")
		if err != nil {
			fail(err)
		}
		filtered := filterProducts(list, *search)
		pageItems, totalPages := service.Paginate(filtered, *page, service.ItemsPerPage)
		fmt.Printf("page %d/%d (%d products)\n", *page, totalPages, len(filtered))
		printJSON(pageItems)

	case "admin-product-add":
		in, imageName, image := parseProductFlags("admin-product-add", args)
		p, err := a.admin.CreateProduct(ctx, in, imageName, image)
		if err != nil {
			fail(err)
		}
		printJSON(p)

	case "admin-product-edit":
		fs := flag.NewFlagSet("admin-product-edit", flag.ExitOnError)
		id := fs.String("id", "", "product id")
		in, imageName, image := parseProductInto(fs, args)
		mustID(*id)
		if err := a.admin.UpdateProduct(ctx, *id, in, imageName, image); err != nil {
			fail(err)
		}
		fmt.Println("updated")

	case "admin-product-rm":
		fs := flag.NewFlagSet("admin-product-rm", flag.ExitOnError)
		id := fs.String("id", "", "product id")
		yes := fs.Bool("yes", false, "skip confirmation")
		_ = fs.Parse(args)
		mustID(*id)
		if !*yes && !confirm(fmt.Sprintf("delete product %s?", *id)) {
			return
		}
		if err := a.admin.DeleteProduct(ctx, *id); err != nil {
			fail(err)
		}
		fmt.Println("deleted")

	case "admin-orders":
		fs := flag.NewFlagSet("admin-orders", flag.ExitOnError)
		page := fs.Int("page", 1, "page number")
		_ = fs.Parse(args)
		list, err := a.admin.Orders(ctx)
		if err != nil {
			fail(err)
		}
		pageItems, totalPages := service.Paginate(list, *page, service.ItemsPerPage)
		fmt.Printf("page %d/%d (%d orders)\n", *page, totalPages, len(list))
		printJSON(pageItems)

	case "admin-order-status":
		fs := flag.NewFlagSet("admin-order-status", flag.ExitOnError)
		id := fs.String("id", "", "order id")
		status := fs.String("status", "", "target status")
		_ = fs.Parse(args)
		mustID(*id)
		if *status == "" {
			fmt.Fprintln(os.Stderr, "need -status")
			os.Exit(1)
		}
		// the target is sent as-is; transition legality is the server's call
		if err := a.admin.UpdateOrderStatus(ctx, *id, model.OrderStatus(*status)); err != nil {
			fail(err)
		}
		fmt.Println("status update accepted")

	case "admin-users":
		list, err := a.admin.Users(ctx)
		if err != nil {
			fail(err)
		}
		printJSON(list)

	case "admin-user-orders":
		fs := flag.NewFlagSet("admin-user-orders", flag.ExitOnError)
		id := fs.String("id", "", "user id")
		_ = fs.Parse(args)
		mustID(*id)
		list, err := a.admin.UserOrders(ctx, *id)
		if err != nil {
			fail(err)
		}
		printJSON(list)

	case "admin-promote":
		fs := flag.NewFlagSet("admin-promote", flag.ExitOnError)
		id := fs.String("id", "", "user id")
		_ = fs.Parse(args)
		mustID(*id)
		if err := a.admin.PromoteUser(ctx, *id); err != nil {
			fail(err)
		}
		fmt.Println("promoted")

	case "admin-revoke":
		fs := flag.NewFlagSet("admin-revoke", flag.ExitOnError)
		id := fs.String("id", "", "user id")
		_ = fs.Parse(args)
		mustID(*id)
		if err := a.admin.RevokeUser(ctx, *id); err != nil {
			fail(err)
		}
		fmt.Println("revoked")

	default:
		usage()
	}
}

func parseProductFlags(name string, args []string) (service.ProductInput, string, []byte) {
	fs := flag.NewFlagSet(name, flag.ExitOnError)
	return parseProductInto(fs, args)
}

// parseProductInto registers the shared product fields on fs, parses, and
// loads the optional image file.
func parseProductInto(fs *flag.FlagSet, args []string) (service.ProductInput, string, []byte) {
	pname := fs.String("name", "", "product name")
	price := fs.String("price", "0", "price")
	stock := fs.Int("stock", 0, "stock")
	category := fs.String("category", "", "category")
	code := fs.String("code", "", "product code")
	description := fs.String("description", "", "description")
	unit := fs.String("unit", "", "unit")
	imageFile := fs.String("image", "", "image file to upload")
	_ = fs.Parse(args)

	d, err := decimal.NewFromString(*price)
	if err != nil {
		fail(fmt.Errorf("bad price %q: %w", *price, err))
	}
	in := service.ProductInput{
		Name:        *pname,
		Price:       d,
		Stock:       *stock,
		Category:    *category,
		Code:        *code,
		Description: *description,
		Unit:        *unit,
	}
	if *imageFile == "" {
		return in, "", nil
	}
	content, err := os.ReadFile(*imageFile)
	if err != nil {
		fail(err)
	}
	return in, baseName(*imageFile), content
}

func baseName(path string) string {
	if i := strings.LastIndexAny(path, `/\`); i >= 0 {
		return path[i+1:]
	}
	return path
}

// filterProducts is the admin table's client-side search over the fetched
// list, matching name and category case-insensitively.
func filterProducts(products []model.Product, query string) []model.Product {
	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" {
		return products
	}
	var out []model.Product
	for _, p := range products {
		if strings.Contains(strings.ToLower(p.Name), query) ||
			strings.Contains(strings.ToLower(p.Category), query) {
			out = append(out, p)
		}
	}
	return out
}
