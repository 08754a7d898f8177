package cli

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	tradeapp "github.com/autobargain/backend/internal/application/trade"
	"github.com/autobargain/backend/internal/infrastructure/logger"
)

func init() {
	rootCmd.AddCommand(bargainsCmd)
	bargainsCmd.AddCommand(bargainsRegisterCmd)
	bargainsCmd.AddCommand(bargainsActivateCmd)
	bargainsCmd.AddCommand(bargainsDeactivateCmd)
	rootCmd.AddCommand(customersCmd)
	customersCmd.AddCommand(customersRegisterCmd)
	rootCmd.AddCommand(vehiclesCmd)
	vehiclesCmd.AddCommand(vehiclesRegisterCmd)
	vehiclesCmd.AddCommand(vehiclesStatusCmd)

	bargainsRegisterCmd.Flags().String("name", "", "Dealership name")
	bargainsRegisterCmd.Flags().String("contact", "", "Contact person")
	bargainsRegisterCmd.Flags().String("phone", "", "Phone number")
	bargainsRegisterCmd.Flags().String("email", "", "Email address")
	bargainsRegisterCmd.Flags().String("address", "", "Postal address")
	_ = bargainsRegisterCmd.MarkFlagRequired("name")

	for _, cmd := range []*cobra.Command{bargainsActivateCmd, bargainsDeactivateCmd, customersRegisterCmd, vehiclesRegisterCmd, vehiclesStatusCmd} {
		cmd.Flags().String("bargain", "", "Bargain id")
		_ = cmd.MarkFlagRequired("bargain")
	}

	customersRegisterCmd.Flags().String("name", "", "Customer name")
	customersRegisterCmd.Flags().String("type", "", "Trading role: buyer, seller or both")
	customersRegisterCmd.Flags().String("phone", "", "Phone number")
	customersRegisterCmd.Flags().String("cnic", "", "National identity card number")
	customersRegisterCmd.Flags().String("email", "", "Email address")
	customersRegisterCmd.Flags().String("address", "", "Postal address")
	_ = customersRegisterCmd.MarkFlagRequired("name")
	_ = customersRegisterCmd.MarkFlagRequired("type")

	vehiclesRegisterCmd.Flags().String("make", "", "Manufacturer")
	vehiclesRegisterCmd.Flags().String("model", "", "Model")
	vehiclesRegisterCmd.Flags().Int("year", 0, "Model year")
	vehiclesRegisterCmd.Flags().String("registration", "", "Registration number")
	vehiclesRegisterCmd.Flags().String("chassis", "", "Chassis number")
	vehiclesRegisterCmd.Flags().String("engine", "", "Engine number")
	vehiclesRegisterCmd.Flags().String("color", "", "Color")
	vehiclesRegisterCmd.Flags().Int("mileage", 0, "Odometer reading in km")
	for _, name := range []string{"make", "model", "year", "registration"} {
		_ = vehiclesRegisterCmd.MarkFlagRequired(name)
	}

	vehiclesStatusCmd.Flags().String("vehicle", "", "Vehicle id")
	vehiclesStatusCmd.Flags().String("status", "", "New status: available, reserved, maintenance or sold")
	_ = vehiclesStatusCmd.MarkFlagRequired("vehicle")
	_ = vehiclesStatusCmd.MarkFlagRequired("status")
}

var bargainsCmd = &cobra.Command{
	Use:   "bargains",
	Short: "Register and (de)activate dealerships",
}

var bargainsRegisterCmd = &cobra.Command{
	Use:   "register",
	Short: "Open a new bargain",
	Args:  cobra.NoArgs,
	RunE:  runBargainsRegister,
}

func runBargainsRegister(cmd *cobra.Command, args []string) error {
	req := tradeapp.RegisterBargainRequest{}
	req.Name, _ = cmd.Flags().GetString("name")
	req.ContactPerson, _ = cmd.Flags().GetString("contact")
	req.Phone, _ = cmd.Flags().GetString("phone")
	req.Email, _ = cmd.Flags().GetString("email")
	req.Address, _ = cmd.Flags().GetString("address")

	ctx := cmd.Context()
	app, err := newApplication(ctx)
	if err != nil {
		return err
	}
	defer app.Close(ctx)
	ctx, _ = logger.WithRunID(ctx, app.log)

	bargain, err := app.registry.RegisterBargain(ctx, req)
	if err != nil {
		return err
	}
	return printBargain(cmd, bargain)
}

var bargainsActivateCmd = &cobra.Command{
	Use:   "activate",
	Short: "Allow a bargain to register customers and vehicles again",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runBargainsSetActive(cmd, true)
	},
}

var bargainsDeactivateCmd = &cobra.Command{
	Use:   "deactivate",
	Short: "Stop a bargain from registering customers and vehicles",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runBargainsSetActive(cmd, false)
	},
}

func runBargainsSetActive(cmd *cobra.Command, active bool) error {
	bargainFlag, _ := cmd.Flags().GetString("bargain")
	bargainID, err := parseUUID("bargain", bargainFlag)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	app, err := newApplication(ctx)
	if err != nil {
		return err
	}
	defer app.Close(ctx)
	ctx, _ = logger.WithRunID(ctx, app.log)

	bargain, err := app.registry.SetBargainActive(logger.WithBargainID(ctx, bargainID), bargainID, active)
	if err != nil {
		return err
	}
	return printBargain(cmd, bargain)
}

func printBargain(cmd *cobra.Command, b *tradeapp.BargainResponse) error {
	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "id\t%s\n", b.ID)
	fmt.Fprintf(w, "name\t%s\n", b.Name)
	fmt.Fprintf(w, "active\t%t\n", b.IsActive)
	return w.Flush()
}

var customersCmd = &cobra.Command{
	Use:   "customers",
	Short: "Buyers and sellers of a bargain",
}

var customersRegisterCmd = &cobra.Command{
	Use:   "register",
	Short: "Add a buyer or seller to a bargain",
	Args:  cobra.NoArgs,
	RunE:  runCustomersRegister,
}

func runCustomersRegister(cmd *cobra.Command, args []string) error {
	bargainFlag, _ := cmd.Flags().GetString("bargain")
	bargainID, err := parseUUID("bargain", bargainFlag)
	if err != nil {
		return err
	}
	req := tradeapp.RegisterCustomerRequest{}
	req.Name, _ = cmd.Flags().GetString("name")
	req.Type, _ = cmd.Flags().GetString("type")
	req.Phone, _ = cmd.Flags().GetString("phone")
	req.CNIC, _ = cmd.Flags().GetString("cnic")
	req.Email, _ = cmd.Flags().GetString("email")
	req.Address, _ = cmd.Flags().GetString("address")

	ctx := cmd.Context()
	app, err := newApplication(ctx)
	if err != nil {
		return err
	}
	defer app.Close(ctx)
	ctx, _ = logger.WithRunID(ctx, app.log)

	customer, err := app.registry.RegisterCustomer(logger.WithBargainID(ctx, bargainID), bargainID, req)
	if err != nil {
		return err
	}
	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "id\t%s\n", customer.ID)
	fmt.Fprintf(w, "name\t%s\n", customer.Name)
	fmt.Fprintf(w, "type\t%s\n", customer.Type)
	return w.Flush()
}

var vehiclesCmd = &cobra.Command{
	Use:   "vehicles",
	Short: "Vehicle stock of a bargain",
}

var vehiclesRegisterCmd = &cobra.Command{
	Use:   "register",
	Short: "Put a vehicle into stock",
	Args:  cobra.NoArgs,
	RunE:  runVehiclesRegister,
}

func runVehiclesRegister(cmd *cobra.Command, args []string) error {
	bargainFlag, _ := cmd.Flags().GetString("bargain")
	bargainID, err := parseUUID("bargain", bargainFlag)
	if err != nil {
		return err
	}
	req := tradeapp.RegisterVehicleRequest{}
	req.Make, _ = cmd.Flags().GetString("make")
	req.Model, _ = cmd.Flags().GetString("model")
	req.Year, _ = cmd.Flags().GetInt("year")
	req.RegistrationNumber, _ = cmd.Flags().GetString("registration")
	req.ChassisNumber, _ = cmd.Flags().GetString("chassis")
	req.EngineNumber, _ = cmd.Flags().GetString("engine")
	req.Color, _ = cmd.Flags().GetString("color")
	req.Mileage, _ = cmd.Flags().GetInt("mileage")

	ctx := cmd.Context()
	app, err := newApplication(ctx)
	if err != nil {
		return err
	}
	defer app.Close(ctx)
	ctx, _ = logger.WithRunID(ctx, app.log)

	vehicle, err := app.registry.RegisterVehicle(logger.WithBargainID(ctx, bargainID), bargainID, req)
	if err != nil {
		return err
	}
	return printVehicle(cmd, vehicle)
}

var vehiclesStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Reserve a vehicle, send it to maintenance or return it to stock",
	Args:  cobra.NoArgs,
	RunE:  runVehiclesStatus,
}

func runVehiclesStatus(cmd *cobra.Command, args []string) error {
	bargainFlag, _ := cmd.Flags().GetString("bargain")
	vehicleFlag, _ := cmd.Flags().GetString("vehicle")
	status, _ := cmd.Flags().GetString("status")
	bargainID, err := parseUUID("bargain", bargainFlag)
	if err != nil {
		return err
	}
	vehicleID, err := parseUUID("vehicle", vehicleFlag)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	app, err := newApplication(ctx)
	if err != nil {
		return err
	}
	defer app.Close(ctx)
	ctx, _ = logger.WithRunID(ctx, app.log)

	vehicle, err := app.registry.ChangeVehicleStatus(logger.WithBargainID(ctx, bargainID), bargainID, vehicleID,
		tradeapp.ChangeVehicleStatusRequest{Status: status})
	if err != nil {
		return err
	}
	return printVehicle(cmd, vehicle)
}

func printVehicle(cmd *cobra.Command, v *tradeapp.VehicleResponse) error {
	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "id\t%s\n", v.ID)
	fmt.Fprintf(w, "vehicle\t%s %s %d\n", v.Make, v.Model, v.Year)
	fmt.Fprintf(w, "registration\t%s\n", v.RegistrationNumber)
	fmt.Fprintf(w, "status\t%s\n", v.Status)
	return w.Flush()
}
