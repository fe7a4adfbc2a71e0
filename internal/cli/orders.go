package cli

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

var (
	orderName     string
	orderPriority int
	orderTasks    []string
)

var ordersCmd = &cobra.Command{
	Use:   "orders",
	Short: "List and manage repair orders",
	RunE:  runOrdersList,
}

var ordersAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Accept a vehicle and schedule its tasks",
	RunE:  runOrdersAdd,
}

var ordersRemoveCmd = &cobra.Command{
	Use:   "remove <order-id>",
	Short: "Drop an order and reschedule the remaining work",
	Args:  cobra.ExactArgs(1),
	RunE:  runOrdersRemove,
}

var ordersDeliverCmd = &cobra.Command{
	Use:   "deliver <order-id>",
	Short: "Mark a fully finished order as delivered",
	Args:  cobra.ExactArgs(1),
	RunE:  runOrdersDeliver,
}

func init() {
	ordersAddCmd.Flags().StringVar(&orderName, "name", "", "Vehicle model name")
	ordersAddCmd.Flags().IntVar(&orderPriority, "priority", 3, "Priority 1 (urgent) to 5")
	ordersAddCmd.Flags().StringSliceVar(&orderTasks, "tasks", nil,
		"Task types to schedule (repeatable or comma separated)")
	ordersCmd.AddCommand(ordersAddCmd)
	ordersCmd.AddCommand(ordersRemoveCmd)
	ordersCmd.AddCommand(ordersDeliverCmd)
}

func runOrdersList(cmd *cobra.Command, args []string) error {
	_, snap, _, err := openShop()
	if err != nil {
		return err
	}
	if len(snap.Orders) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No orders.")
		return nil
	}
	open := map[string]int{}
	for _, task := range snap.Tasks {
		open[task.OrderID]++
	}
	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tMODEL\tPRIORITY\tACCEPTED\tTASKS\tDELIVERED")
	for _, order := range snap.Orders {
		delivered := ""
		if order.Delivered {
			delivered = "yes"
		}
		fmt.Fprintf(w, "%s\t%s\t%d\t%s\t%d\t%s\n",
			order.ID, order.Name, order.Priority,
			order.AcceptedAt.Format("2006-01-02 15:04"), open[order.ID], delivered)
	}
	return w.Flush()
}

func runOrdersAdd(cmd *cobra.Command, args []string) error {
	eng, snap, _, err := openShop()
	if err != nil {
		return err
	}
	known := map[string]bool{}
	for _, o := range snap.Orders {
		known[o.ID] = true
	}
	next, err := eng.SubmitOrder(snap, orderName, orderPriority, orderTasks)
	if err != nil {
		return err
	}
	for _, o := range next.Orders {
		if !known[o.ID] {
			fmt.Fprintf(cmd.OutOrStdout(), "Order accepted: %s (%s)\n", o.Name, o.ID)
			break
		}
	}
	return nil
}

func runOrdersRemove(cmd *cobra.Command, args []string) error {
	eng, snap, _, err := openShop()
	if err != nil {
		return err
	}
	if _, err := eng.RemoveOrder(snap, args[0]); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Order removed: %s\n", args[0])
	return nil
}

func runOrdersDeliver(cmd *cobra.Command, args []string) error {
	eng, snap, _, err := openShop()
	if err != nil {
		return err
	}
	if _, err := eng.MarkDelivered(snap, args[0]); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Order delivered: %s\n", args[0])
	return nil
}
