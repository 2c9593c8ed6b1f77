package main

import (
	"flag"
	"fmt"
	"os"
	"time"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	// Global flags
	apiURL := "http://localhost:8080"
	if envURL := os.Getenv("API_URL"); envURL != "" {
		apiURL = envURL
	}

	command := os.Args[1]
	args := os.Args[2:]

	switch command {
	case "full":
		fullCmd(apiURL, args)
	case "contacts":
		contactsCmd(apiURL, args)
	case "browse":
		browseCmd(apiURL, args)
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Printf("Unknown command: %s\n\n", command)
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`Storefront Simulator - Development tool for exercising a running backend

USAGE:
  simulator <command> [options]

COMMANDS:
  full      Log in, create a category and products, submit a contact and triage it
  contacts  Submit fake contact requests through the public form
  browse    Print the public catalogue
  help      Show this help message

ENVIRONMENT:
  API_URL   Backend API URL (default: http://localhost:8080)

EXAMPLES:
  # Run the whole admin flow and remove what it created
  simulator full --email=admin@jbfsport.com --password=secret123 --cleanup

  # Send 5 contact requests while the admin dashboard is open
  simulator contacts --count=5

  # Show categories with their products
  simulator browse`)
}

func fullCmd(apiURL string, args []string) {
	fs := flag.NewFlagSet("full", flag.ExitOnError)
	email := fs.String("email", os.Getenv("ADMIN_EMAIL"), "Admin email")
	password := fs.String("password", os.Getenv("ADMIN_PASSWORD"), "Admin password")
	products := fs.Int("products", 3, "Number of products to create")
	cleanup := fs.Bool("cleanup", false, "Delete the created products and category at the end")
	fs.Parse(args)

	if *email == "" || *password == "" {
		fmt.Println("Error: --email and --password are required")
		os.Exit(1)
	}
	if *products < 1 || *products > 20 {
		fmt.Println("Error: --products must be between 1 and 20")
		os.Exit(1)
	}

	client := NewAPIClient(apiURL)

	fmt.Println("=== Storefront Simulator: Full Flow ===")
	fmt.Println()

	// 1. Log in
	fmt.Print("Logging in... ")
	login, err := client.Login(*email, *password)
	if err != nil {
		fmt.Printf("FAILED\n  Error: %v\n", err)
		os.Exit(1)
	}
	token := login.Token
	fmt.Printf("OK (admin: %s, expires %s)\n", login.Admin.Name, login.ExpiresAt.Format(time.RFC3339))

	// 2. Catalogue
	name := fmt.Sprintf("Simulated %d", time.Now().UnixNano()%100000)
	category, err := client.CreateCategory(token, name)
	if err != nil {
		fmt.Printf("Failed to create category: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("  Category created: %s (slug: %s)\n", category.Name, category.Slug)

	var created []*Product
	fmt.Println()
	fmt.Printf("Adding %d products:\n", *products)
	for i := 0; i < *products; i++ {
		product, err := client.CreateProduct(token, fmt.Sprintf("%s Item %d", name, i+1), category.ID, 9.99+float64(i)*10, i%2 == 0)
		if err != nil {
			fmt.Printf("  [%d/%d] FAILED: %v\n", i+1, *products, err)
			os.Exit(1)
		}
		created = append(created, product)
		fmt.Printf("  [%d/%d] %s (%.2f)\n", i+1, *products, product.Slug, product.Price)
	}

	if err := client.DeleteCategory(token, category.ID); err == nil {
		fmt.Println("Error: category with products was deleted")
		os.Exit(1)
	}
	fmt.Println("  Delete of non-empty category refused as expected")

	// 3. Contact flow
	fmt.Println()
	fmt.Print("Submitting contact request... ")
	submitted, err := client.SubmitContact("Simulated Customer", "customer@example.com", "Is the "+created[0].Name+" available in store?")
	if err != nil {
		fmt.Printf("FAILED\n  Error: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("OK (id: %s, notification: %s)\n", submitted.ID, submitted.Notification.Status)

	unread, err := client.ListUnread(token)
	if err != nil {
		fmt.Printf("Failed to list contacts: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("  %d unread contact request(s)\n", len(unread))

	if err := client.MarkRead(token, submitted.ID); err != nil {
		fmt.Printf("Failed to mark contact read: %v\n", err)
		os.Exit(1)
	}
	fmt.Println("  Contact marked as read")

	if !*cleanup {
		fmt.Println()
		fmt.Println("Done. Re-run with --cleanup to remove the simulated catalogue.")
		return
	}

	// 4. Cleanup
	fmt.Println()
	fmt.Print("Cleaning up... ")
	for _, p := range created {
		if err := client.DeleteProduct(token, p.ID); err != nil {
			fmt.Printf("FAILED\n  Error: %v\n", err)
			os.Exit(1)
		}
	}
	if err := client.DeleteCategory(token, category.ID); err != nil {
		fmt.Printf("FAILED\n  Error: %v\n", err)
		os.Exit(1)
	}
	fmt.Println("OK")
}

func contactsCmd(apiURL string, args []string) {
	fs := flag.NewFlagSet("contacts", flag.ExitOnError)
	count := fs.Int("count", 3, "Number of contact requests to submit")
	delay := fs.Duration("delay", time.Second, "Pause between submissions")
	fs.Parse(args)

	if *count < 1 {
		fmt.Println("Error: --count must be at least 1")
		os.Exit(1)
	}

	client := NewAPIClient(apiURL)

	fmt.Printf("Submitting %d contact request(s):\n", *count)
	for i := 0; i < *count; i++ {
		name := fmt.Sprintf("Customer %d", i+1)
		email := fmt.Sprintf("customer%d@example.com", i+1)
		result, err := client.SubmitContact(name, email, "Hello, I have a question about an order I placed last week.")
		if err != nil {
			fmt.Printf("  [%d/%d] FAILED: %v\n", i+1, *count, err)
			os.Exit(1)
		}
		fmt.Printf("  [%d/%d] %s -> %s (%s)\n", i+1, *count, email, result.ID, result.Notification.Status)

		if i < *count-1 {
			time.Sleep(*delay)
		}
	}
}

func browseCmd(apiURL string, args []string) {
	fs := flag.NewFlagSet("browse", flag.ExitOnError)
	fs.Parse(args)

	client := NewAPIClient(apiURL)

	categories, err := client.ListCategories()
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}
	for _, c := range categories {
		status := ""
		if !c.IsActive {
			status = " (inactive)"
		}
		fmt.Printf("%s [%s]%s\n", c.Name, c.Slug, status)
		for _, p := range c.Products {
			fmt.Printf("  - %-40s %8.2f\n", p.Name, p.Price)
		}
	}

	promos, err := client.ListPromoProducts()
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}
	fmt.Println()
	fmt.Printf("%d product(s) on promotion\n", len(promos))
	for _, p := range promos {
		fmt.Printf("  - %-40s %8.2f\n", p.Name, p.Price)
	}
}
