package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

func newRootCommand() *cobra.Command {
	so := &storeOptions{}

	cmd := &cobra.Command{
		Use:   "prefdeck",
		Short: "Inspect and maintain prefdeck preference stores.",
		Long: `Inspect and maintain prefdeck preference stores.

Keys are setting breadcrumbs (for example "General#Dark Mode") or explicit
key overrides. The same stores the library writes can be read and edited
here, which is useful for debugging an application's persisted state.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVar(&so.Kind, "store", "json",
		"backend: json, yaml, diskv, or sqlite")
	cmd.PersistentFlags().StringVar(&so.Path, "path", "",
		"store location (default ~/.prefdeck/prefs.<ext>)")
	cmd.PersistentFlags().StringVar(&so.Delimiter, "delimiter", "#",
		"breadcrumb delimiter; must match the application's (diskv nests keys by it)")

	addList(cmd, so)
	addGet(cmd, so)
	addSet(cmd, so)
	addDel(cmd, so)
	addClear(cmd, so)
	return cmd
}

func addList(topLevel *cobra.Command, so *storeOptions) {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List every stored key and value.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, keys, err := so.open()
			if err != nil {
				return err
			}
			for _, key := range keys() {
				v, err := store.LoadObject(key, nil)
				if err != nil {
					// Lists fail the scalar load on some backends.
					if l, lerr := store.LoadList(key, nil); lerr == nil {
						v = l
					} else {
						return err
					}
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s = %v\n", color.CyanString(key), v)
			}
			return nil
		},
	}
	topLevel.AddCommand(cmd)
}

func addGet(topLevel *cobra.Command, so *storeOptions) {
	var asList bool

	cmd := &cobra.Command{
		Use:   "get <key>",
		Short: "Print the value stored under a key.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, _, err := so.open()
			if err != nil {
				return err
			}
			key := args[0]
			if asList {
				l, err := store.LoadList(key, nil)
				if err != nil {
					return err
				}
				if l == nil {
					return fmt.Errorf("no value stored under %q", key)
				}
				fmt.Fprintln(cmd.OutOrStdout(), strings.Join(l, ","))
				return nil
			}
			v, err := store.LoadObject(key, nil)
			if err != nil {
				return err
			}
			if v == nil {
				return fmt.Errorf("no value stored under %q", key)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%v\n", v)
			return nil
		},
	}
	cmd.Flags().BoolVar(&asList, "list", false, "read the key as an ordered list")
	topLevel.AddCommand(cmd)
}

func addSet(topLevel *cobra.Command, so *storeOptions) {
	var valueType string

	cmd := &cobra.Command{
		Use:   "set <key> <value>",
		Short: "Store a value under a key.",
		Long: `Store a value under a key.

The value is parsed per --type: string (default), bool, int, float, or
list (comma-separated elements, stored as an ordered sequence).`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, _, err := so.open()
			if err != nil {
				return err
			}
			key, raw := args[0], args[1]

			switch valueType {
			case "string":
				return store.SaveObject(key, raw)
			case "bool":
				b, err := strconv.ParseBool(raw)
				if err != nil {
					return fmt.Errorf("parse bool %q: %w", raw, err)
				}
				return store.SaveObject(key, b)
			case "int":
				n, err := strconv.Atoi(raw)
				if err != nil {
					return fmt.Errorf("parse int %q: %w", raw, err)
				}
				return store.SaveObject(key, n)
			case "float":
				f, err := strconv.ParseFloat(raw, 64)
				if err != nil {
					return fmt.Errorf("parse float %q: %w", raw, err)
				}
				return store.SaveObject(key, f)
			case "list":
				return store.SaveList(key, strings.Split(raw, ","))
			default:
				return fmt.Errorf("unknown type %q (string, bool, int, float, list)", valueType)
			}
		},
	}
	cmd.Flags().StringVar(&valueType, "type", "string", "value type: string, bool, int, float, or list")
	topLevel.AddCommand(cmd)
}

func addDel(topLevel *cobra.Command, so *storeOptions) {
	cmd := &cobra.Command{
		Use:     "del <key>",
		Aliases: []string{"delete", "rm"},
		Short:   "Remove a stored key.",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, _, err := so.open()
			if err != nil {
				return err
			}
			return store.Delete(args[0])
		},
	}
	topLevel.AddCommand(cmd)
}

func addClear(topLevel *cobra.Command, so *storeOptions) {
	var yes bool

	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Remove every stored key.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !yes {
				return fmt.Errorf("refusing to clear without --yes")
			}
			store, _, err := so.open()
			if err != nil {
				return err
			}
			if err := store.ClearPreferences(); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), color.YellowString("preferences cleared"))
			return nil
		},
	}
	cmd.Flags().BoolVar(&yes, "yes", false, "confirm the wipe")
	topLevel.AddCommand(cmd)
}
