// Command shopctl is a CLI client for the EC Study storefront.
package main

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/gofrs/uuid/v5"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/ecstudy/shopctl/internal/api"
	"github.com/ecstudy/shopctl/internal/config"
	"github.com/ecstudy/shopctl/internal/model"
	"github.com/ecstudy/shopctl/internal/service"
	"github.com/ecstudy/shopctl/internal/session"
)

var (
	version   = "dev"
	buildDate = "unknown"
)

// app bundles the wired services for command handlers.
type app struct {
	sessions *session.Store
	auth     *service.AuthService
	catalog  *service.CatalogService
	cart     *service.CartView
	checkout *service.CheckoutService
	orders   *service.OrderService
	wallet   *service.WalletService
	admin    *service.AdminService
	log      *zap.Logger
}

func usage() {
	fmt.Fprintf(os.Stderr, `shopctl CLI
Usage:
  shopctl [-api URL] [-v] <cmd> [args]

Commands:
  version
  register   -u <username> -e <email> -p <password> [-remember]
  login      -e <email> -p <password> [-remember]
  logout
  whoami
  forgot-password -e <email>
  reset-password  -token <token> -p <new password>

  products   [-search q] [-category c] [-page n]
  product    -id <id>
  categories
  suggest                                  (reads queries from stdin)

  cart
  cart-add   -id <product> [-qty n]
  cart-set   -id <product> -qty <n>
  cart-rm    -id <product>
  cart-clear [-yes]

  checkout   [-address a] [-phone p] [-yes]
  orders
  order      -id <id>
  rate       -id <order> -stars <1..5>
  review     -order <id> -product <id> -stars <1..5> -content <text>

  wallet
  deposit    -amount <n>
  transactions

  profile
  profile-edit [-address a] [-phone p]

Admin:
  admin-products      [-search q] [-page n]
  admin-product-add   -name N -price P -stock S -category C -code K [-image file]
  admin-product-edit  -id <id> -name N -price P -stock S -category C -code K [-image file]
  admin-product-rm    -id <id> [-yes]
  admin-orders        [-page n]
  admin-order-status  -id <id> -status <status>
  admin-users
  admin-user-orders   -id <user>
  admin-promote       -id <user>
  admin-revoke        -id <user>
`)
	os.Exit(2)
}

// main dispatches subcommands over the wired services.
func main() {
	apiURL := flag.String("api", "", "API base URL override")
	verbose := flag.Bool("v", false, "verbose logging")
	flag.Usage = usage
	flag.Parse()

	if flag.NArg() < 1 {
		usage()
	}
	cmd := flag.Arg(0)
	args := flag.Args()[1:]

	logger := zap.NewNop()
	if *verbose {
		logger, _ = zap.NewDevelopment()
	}
	defer func() { _ = logger.Sync() }()

	cfg, err := config.Load()
	if err != nil {
		fail(err)
	}
	if *apiURL != "" {
		cfg.BaseURL = *apiURL
	}

	remembered, ephemeral := session.DefaultPaths()
	sessions := session.New(session.NewFileKV(remembered), session.NewFileKV(ephemeral), logger)
	client := api.New(cfg.BaseURL, sessions, logger)

	a := &app{
		sessions: sessions,
		auth:     service.NewAuthService(client, sessions, logger),
		catalog:  service.NewCatalogService(client, logger),
		cart:     service.NewCartView(client, logger),
		checkout: service.NewCheckoutService(client, sessions, logger),
		orders:   service.NewOrderService(client, logger),
		wallet:   service.NewWalletService(client, logger),
		admin:    service.NewAdminService(client, logger),
		log:      logger,
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	switch cmd {

	case "version":
		fmt.Printf("shopctl %s (%s)\n", version, buildDate)

	case "register":
		fs := flag.NewFlagSet("register", flag.ExitOnError)
		u := fs.String("u", "", "username")
		e := fs.String("e", "", "email")
		p := fs.String("p", "", "password")
		remember := fs.Bool("remember", false, "persist the session")
		_ = fs.Parse(args)
		out, err := a.auth.Register(ctx, service.RegisterInput{Username: *u, Email: *e, Password: *p}, *remember)
		if err != nil {
			fail(err)
		}
		fmt.Printf("registered %s, landing at %s\n", out.User.Username, service.LandingSurface(&out.User))

	case "login":
		fs := flag.NewFlagSet("login", flag.ExitOnError)
		e := fs.String("e", "", "email")
		p := fs.String("p", "", "password")
		remember := fs.Bool("remember", false, "persist the session")
		_ = fs.Parse(args)
		out, err := a.auth.Login(ctx, *e, *p, *remember)
		if err != nil {
			fail(err)
		}
		fmt.Printf("welcome %s, landing at %s\n", out.User.Username, service.LandingSurface(&out.User))

	case "logout":
		a.auth.Logout(ctx)
		fmt.Println("logged out")

	case "whoami":
		sess := a.sessions.Session()
		if sess == nil {
			fmt.Println("not logged in")
			os.Exit(1)
		}
		printJSON(sess)

	case "forgot-password":
		fs := flag.NewFlagSet("forgot-password", flag.ExitOnError)
		e := fs.String("e", "", "email")
		_ = fs.Parse(args)
		if err := a.auth.ForgotPassword(ctx, *e); err != nil {
			fail(err)
		}
		fmt.Println("reset mail requested")

	case "reset-password":
		fs := flag.NewFlagSet("reset-password", flag.ExitOnError)
		token := fs.String("token", "", "reset token")
		p := fs.String("p", "", "new password")
		_ = fs.Parse(args)
		if err := a.auth.ResetPassword(ctx, *token, *p); err != nil {
			fail(err)
		}
		fmt.Println("password reset")

	case "products":
		fs := flag.NewFlagSet("products", flag.ExitOnError)
		search := fs.String("search", "", "server-side search term")
		category := fs.String("category", service.CategoryAll, "client-side category filter")
		page := fs.Int("page", 1, "page number")
		_ = fs.Parse(args)
		list, err := a.catalog.Products(ctx, *search)
		if err != nil {
			fail(err)
		}
		filtered := service.FilterByCategory(list, *category)
		pageItems, totalPages := service.Paginate(filtered, *page, service.ItemsPerPage)
		fmt.Printf("page %d/%d (%d products)\n", *page, totalPages, len(filtered))
		printJSON(pageItems)

	case "product":
		fs := flag.NewFlagSet("product", flag.ExitOnError)
		id := fs.String("id", "", "product id")
		_ = fs.Parse(args)
		mustID(*id)
		p, err := a.catalog.Product(ctx, *id)
		if err != nil {
			fail(err)
		}
		printJSON(p)

	case "categories":
		cats, err := a.catalog.Categories(ctx)
		if err != nil {
			fail(err)
		}
		printJSON(cats)

	case "suggest":
		runSuggest(a)

	case "cart":
		if err := a.cart.Load(ctx); err != nil {
			fail(err)
		}
		printCart(a.cart)

	case "cart-add":
		fs := flag.NewFlagSet("cart-add", flag.ExitOnError)
		id := fs.String("id", "", "product id")
		qty := fs.Int("qty", 1, "quantity")
		_ = fs.Parse(args)
		mustID(*id)
		if err := a.cart.AddItem(ctx, *id, *qty); err != nil {
			fail(err)
		}
		printCart(a.cart)

	case "cart-set":
		fs := flag.NewFlagSet("cart-set", flag.ExitOnError)
		id := fs.String("id", "", "product id")
		qty := fs.Int("qty", 0, "new quantity")
		_ = fs.Parse(args)
		mustID(*id)
		applyCartOp(ctx, a, service.SetQuantity(*id, *qty))

	case "cart-rm":
		fs := flag.NewFlagSet("cart-rm", flag.ExitOnError)
		id := fs.String("id", "", "product id")
		_ = fs.Parse(args)
		mustID(*id)
		applyCartOp(ctx, a, service.RemoveLine(*id))

	case "cart-clear":
		fs := flag.NewFlagSet("cart-clear", flag.ExitOnError)
		yes := fs.Bool("yes", false, "skip confirmation")
		_ = fs.Parse(args)
		if !*yes && !confirm("clear the whole cart?") {
			return
		}
		applyCartOp(ctx, a, service.ClearCart())

	case "checkout":
		fs := flag.NewFlagSet("checkout", flag.ExitOnError)
		address := fs.String("address", "", "shipping address (default: profile)")
		phone := fs.String("phone", "", "phone number (default: profile)")
		yes := fs.Bool("yes", false, "skip confirmation")
		_ = fs.Parse(args)
		runCheckout(ctx, a, *address, *phone, *yes)

	case "orders":
		list, err := a.orders.MyOrders(ctx)
		if err != nil {
			fail(err)
		}
		printJSON(list)

	case "order":
		fs := flag.NewFlagSet("order", flag.ExitOnError)
		id := fs.String("id", "", "order id")
		_ = fs.Parse(args)
		mustID(*id)
		o, err := a.orders.Order(ctx, *id)
		if err != nil {
			fail(err)
		}
		printJSON(o)

	case "rate":
		fs := flag.NewFlagSet("rate", flag.ExitOnError)
		id := fs.String("id", "", "order id")
		stars := fs.Int("stars", 5, "rating 1..5")
		_ = fs.Parse(args)
		mustID(*id)
		if err := a.orders.RateOrder(ctx, *id, *stars); err != nil {
			fail(err)
		}
		fmt.Println("thanks for rating")

	case "review":
		fs := flag.NewFlagSet("review", flag.ExitOnError)
		order := fs.String("order", "", "order id")
		product := fs.String("product", "", "product id")
		stars := fs.Int("stars", 5, "rating 1..5")
		content := fs.String("content", "", "review text")
		_ = fs.Parse(args)
		mustID(*order)
		mustID(*product)
		err := a.orders.SubmitReviews(ctx, []service.Review{{
			OrderID: *order, ProductID: *product, Rating: *stars, Content: *content,
		}})
		if err != nil {
			fail(err)
		}
		fmt.Println("review submitted")

	case "wallet":
		w, err := a.wallet.Balance(ctx)
		if err != nil {
			fail(err)
		}
		fmt.Printf("balance: %s\n", w.Balance)

	case "deposit":
		fs := flag.NewFlagSet("deposit", flag.ExitOnError)
		amount := fs.String("amount", "", "amount to deposit")
		_ = fs.Parse(args)
		d, err := decimal.NewFromString(*amount)
		if err != nil {
			fail(fmt.Errorf("bad amount %q: %w", *amount, err))
		}
		if err := a.wallet.Deposit(ctx, d); err != nil {
			fail(err)
		}
		fmt.Println("deposit requested")

	case "transactions":
		txs, err := a.wallet.Transactions(ctx)
		if err != nil {
			fail(err)
		}
		printJSON(txs)

	case "profile":
		u := a.sessions.StoredUser()
		if u == nil {
			fail(errors.New("not logged in"))
		}
		printJSON(u)

	case "profile-edit":
		fs := flag.NewFlagSet("profile-edit", flag.ExitOnError)
		address := fs.String("address", "", "shipping address")
		phone := fs.String("phone", "", "phone number")
		_ = fs.Parse(args)
		u := a.sessions.StoredUser()
		if u == nil {
			fail(errors.New("not logged in"))
		}
		if *address != "" {
			u.Address = *address
		}
		if *phone != "" {
			u.Phone = *phone
		}
		// cache-only update; the server copy is untouched
		if err := a.sessions.UpdateCachedUser(u); err != nil {
			fail(err)
		}
		printJSON(u)

	default:
		if strings.HasPrefix(cmd, "admin-") {
			adminDispatch(ctx, a, cmd, args)
			return
		}
		usage()
	}
}

// ---- helpers ----

func applyCartOp(ctx context.Context, a *app, op service.Op) {
	if err := a.cart.Load(ctx); err != nil {
		fail(err)
	}
	out, err := a.cart.Apply(ctx, op)
	if err != nil {
		fail(err)
	}
	if out.Reconciled {
		fmt.Fprintf(os.Stderr, "update rejected (%v), cart reloaded\n", out.Failure)
	}
	printCart(a.cart)
}

func printCart(cart *service.CartView) {
	lines := cart.Lines()
	if len(lines) == 0 {
		fmt.Println("cart is empty")
		return
	}
	printJSON(lines)
	fmt.Printf("selected %d lines, total %s\n", cart.SelectedCount(), cart.SelectedTotal())
}

func runCheckout(ctx context.Context, a *app, address, phone string, yes bool) {
	st, err := a.checkout.Prepare(ctx)
	if err != nil {
		fail(err)
	}
	if address != "" {
		st.ShippingAddress = address
	}
	if phone != "" {
		st.PhoneNumber = phone
	}
	fmt.Printf("total %s, balance %s, ship to %q / %q\n",
		st.Total(), st.Wallet.Balance, st.ShippingAddress, st.PhoneNumber)
	if !st.CanSubmit() {
		fail(errors.New("cannot submit: need address, phone, and sufficient balance"))
	}
	if !yes && !confirm("place the order?") {
		return
	}
	orderID, err := a.checkout.Submit(ctx, st)
	if err != nil {
		fail(err)
	}
	order, err := a.checkout.Confirmation(ctx, orderID)
	if err != nil {
		fail(err)
	}
	printJSON(order)
}

// runSuggest reads queries line by line and prints suggestions as they
// settle. Fast consecutive inputs exercise the debounce; only the settled
// query's results ever print.
func runSuggest(a *app) {
	sug := service.NewSuggester(a.catalog, func(query string, products []model.Product) {
		fmt.Printf("suggestions for %q:\n", query)
		for _, p := range products {
			fmt.Printf("  %s  %s\n", p.Name, p.Price)
		}
	}, a.log)
	defer sug.Stop()

	fmt.Fprintln(os.Stderr, "type queries (min 2 chars), ctrl-d to quit")
	sc := bufio.NewScanner(os.Stdin)
	for sc.Scan() {
		sug.Input(sc.Text())
	}
	// let a pending fetch settle before exiting
	time.Sleep(service.SuggestDebounce + time.Second)
}

func confirm(prompt string) bool {
	fmt.Fprintf(os.Stderr, "%s [y/N] ", prompt)
	sc := bufio.NewScanner(os.Stdin)
	if !sc.Scan() {
		return false
	}
	answer := strings.ToLower(strings.TrimSpace(sc.Text()))
	return answer == "y" || answer == "yes"
}

// mustID validates a UUID argument before any network call.
func mustID(id string) {
	if id == "" {
		fmt.Fprintln(os.Stderr, "need -id")
		os.Exit(1)
	}
	if _, err := uuid.FromString(id); err != nil {
		fmt.Fprintf(os.Stderr, "bad id %q: %v\n", id, err)
		os.Exit(1)
	}
}

func printJSON(v any) {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	_ = enc.Encode(v)
}

func fail(err error) {
	var apiErr *api.Error
	if errors.As(err, &apiErr) {
		fmt.Fprintf(os.Stderr, "api error: status=%d msg=%s\n", apiErr.Status, apiErr.Message)
		os.Exit(1)
	}
	fmt.Fprintln(os.Stderr, err)
	os.Exit(1)
}
