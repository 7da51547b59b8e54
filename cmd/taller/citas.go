package main

import (
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/erazemk/taller/internal/dashboard"
	"github.com/erazemk/taller/internal/service"
)

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Check credentials against the upstream API and print the profile",
	Args:  cobra.NoArgs,
	RunE:  runLogin,
}

var citasCmd = &cobra.Command{
	Use:   "citas",
	Short: "Print the appointment dashboard of an employee",
	Args:  cobra.NoArgs,
	RunE:  runCitas,
}

var (
	loginUser     string
	loginPassword string

	citasEstado   string
	citasSucursal int
	citasDesde    string
	citasHasta    string
	citasQuery    string
)

func init() {
	rootCmd.AddCommand(loginCmd, citasCmd)

	for _, cmd := range []*cobra.Command{loginCmd, citasCmd} {
		cmd.Flags().StringVarP(&loginUser, "user", "u", "", "Upstream username")
		cmd.Flags().StringVarP(&loginPassword, "password", "p", os.Getenv("TALLER_PASSWORD"), "Upstream password (default $TALLER_PASSWORD)")
		cmd.MarkFlagRequired("user")
	}

	citasCmd.Flags().StringVar(&citasEstado, "estado", "", "Appointment state: Activo or Finalizado")
	citasCmd.Flags().IntVar(&citasSucursal, "sucursal", 0, "Branch code")
	citasCmd.Flags().StringVar(&citasDesde, "desde", "", "First day, YYYY-MM-DD")
	citasCmd.Flags().StringVar(&citasHasta, "hasta", "", "Last day, YYYY-MM-DD")
	citasCmd.Flags().StringVarP(&citasQuery, "query", "q", "", "Appointment code search")
}

func runLogin(cmd *cobra.Command, args []string) error {
	setupQuietLogger()
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	profile, err := service.Login(cmd.Context(), newUpstream(cfg), loginUser, loginPassword)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintf(w, "Empresa:\t%s\t%s\n", profile.EmpCode, profile.EmpNombre)
	fmt.Fprintf(w, "Empleado:\t%s\t%s\n", profile.EmplCode, profile.EmplNombre)
	fmt.Fprintf(w, "Usuario:\t%s\n", profile.Usuario)
	return w.Flush()
}

func runCitas(cmd *cobra.Command, args []string) error {
	setupQuietLogger()
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	upstream := newUpstream(cfg)
	profile, err := service.Login(ctx, upstream, loginUser, loginPassword)
	if err != nil {
		return err
	}

	f := dashboard.Filters{Estado: citasEstado, Sucursal: citasSucursal}
	if citasDesde != "" {
		if f.Start, err = time.Parse(time.DateOnly, citasDesde); err != nil {
			return fmt.Errorf("invalid --desde: %w", err)
		}
	}
	if citasHasta != "" {
		if f.End, err = time.Parse(time.DateOnly, citasHasta); err != nil {
			return fmt.Errorf("invalid --hasta: %w", err)
		}
		f.End = f.End.Add(24*time.Hour - time.Nanosecond)
	}

	c := dashboard.New(upstream, profile.EmpCode)
	c.Search(citasQuery)
	if err := c.ApplyFilters(ctx, f); err != nil {
		return err
	}
	if err := c.Refresh(ctx); err != nil {
		return err
	}

	v := c.View()
	out := cmd.OutOrStdout()
	if v.Summary != nil {
		fmt.Fprintf(out, "Pendientes: %d  Recibidos: %d  Entregados: %d\n\n",
			v.Summary.Pendientes, v.Summary.Recibidos, v.Summary.Entregados)
	}
	if v.Total == 0 {
		fmt.Fprintln(out, "No hay citas.")
		return nil
	}

	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	for _, g := range v.Groups {
		fmt.Fprintf(w, "%s\n", g.Fecha)
		for _, a := range g.Citas {
			fmt.Fprintf(w, "  %d\t%s %s\t%s\t%s %s\t%s\n",
				a.Cita.Code,
				a.Cliente.Nombre, a.Cliente.Apellido,
				a.Vehiculo.Placa,
				a.Vehiculo.Marca, a.Vehiculo.Modelo,
				a.Cita.SucNombre)
		}
	}
	return w.Flush()
}
