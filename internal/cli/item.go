package cli

import (
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(itemCmd)
	itemCmd.AddCommand(itemListCmd)
	itemCmd.AddCommand(itemGetCmd)
	rootCmd.AddCommand(reputationCmd)
}

var itemCmd = &cobra.Command{
	Use:   "item",
	Short: "Inspect items on the hashtag",
}

// ─── item list ──────────────────────────────────────────────────────────────

var itemListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all items",
	RunE:  runItemList,
}

func runItemList(cmd *cobra.Command, args []string) error {
	var resp struct {
		Items []struct {
			ID        uint64 `json:"id"`
			Status    int    `json:"status"`
			Seeker    string `json:"seeker"`
			Provider  string `json:"provider"`
			ItemValue string `json:"item_value"`
		} `json:"items"`
		Count uint64 `json:"count"`
	}
	if err := getJSON("/api/items", &resp); err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tSTATUS\tSEEKER\tPROVIDER\tVALUE")
	statusNames := []string{"OPEN", "FUNDED", "DISPUTED", "PAID", "RESOLVED", "CANCELLED"}
	for _, it := range resp.Items {
		status := fmt.Sprint(it.Status)
		if it.Status >= 0 && it.Status < len(statusNames) {
			status = statusNames[it.Status]
		}
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\n", it.ID, status, it.Seeker, it.Provider, it.ItemValue)
	}
	return w.Flush()
}

// ─── item get ───────────────────────────────────────────────────────────────

var itemGetCmd = &cobra.Command{
	Use:   "get ITEM_ID",
	Short: "Show one item record as JSON",
	Args:  cobra.ExactArgs(1),
	RunE:  runItemGet,
}

func runItemGet(cmd *cobra.Command, args []string) error {
	var item json.RawMessage
	if err := getJSON("/api/items/"+args[0], &item); err != nil {
		return err
	}
	var pretty map[string]interface{}
	if err := json.Unmarshal(item, &pretty); err != nil {
		return err
	}
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(pretty)
}

// ─── reputation ─────────────────────────────────────────────────────────────

var reputationCmd = &cobra.Command{
	Use:   "reputation ADDRESS",
	Short: "Show an address's seeker and provider scores",
	Args:  cobra.ExactArgs(1),
	RunE:  runReputation,
}

func runReputation(cmd *cobra.Command, args []string) error {
	var resp struct {
		Address  string `json:"address"`
		Seeker   uint64 `json:"seeker"`
		Provider uint64 `json:"provider"`
	}
	if err := getJSON("/api/reputation/"+args[0], &resp); err != nil {
		return err
	}
	fmt.Printf("address:  %s\nseeker:   %d\nprovider: %d\n", resp.Address, resp.Seeker, resp.Provider)
	return nil
}

// getJSON fetches a daemon endpoint into out.
func getJSON(path string, out interface{}) error {
	resp, err := http.Get(serverURL + path)
	if err != nil {
		return fmt.Errorf("is the daemon running at %s? %w", serverURL, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		var fail struct {
			Error struct {
				Message string `json:"message"`
			} `json:"error"`
		}
		if err := json.NewDecoder(resp.Body).Decode(&fail); err == nil && fail.Error.Message != "" {
			return fmt.Errorf("%s", fail.Error.Message)
		}
		return fmt.Errorf("unexpected status %s", resp.Status)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
