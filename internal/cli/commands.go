package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/utafrali/storefront/internal/remote"
	"github.com/utafrali/storefront/internal/syncer"
	"github.com/utafrali/storefront/pkg/logger"
)

// Streams are the standard streams commands read and write.
type Streams struct {
	In  io.Reader
	Out io.Writer
	Err io.Writer
}

type rootOptions struct {
	streams     Streams
	environ     map[string]string
	profilePath string
	url         string
	logLevel    string
}

// NewRootCommand builds the storefrontctl command tree. A nil environ reads
// the process environment.
func NewRootCommand(streams Streams, environ map[string]string) *cobra.Command {
	o := &rootOptions{streams: streams, environ: environ}

	root := &cobra.Command{
		Use:           "storefrontctl",
		Short:         "Shop a storefront from the terminal",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetIn(streams.In)
	root.SetOut(streams.Out)
	root.SetErr(streams.Err)

	root.PersistentFlags().StringVar(&o.profilePath, "profile", DefaultProfilePath(), "profile file")
	root.PersistentFlags().StringVar(&o.url, "url", "", "storefront API URL (overrides the profile)")
	root.PersistentFlags().StringVar(&o.logLevel, "log-level", "", "log level (overrides the profile)")

	root.AddCommand(
		newCartCommand(o),
		newWishlistCommand(o),
		newProductsCommand(o),
		newLoginCommand(o),
		newWatchCommand(o),
	)
	return root
}

// withSession loads the profile, runs fn with a fresh session and writes
// any new cookies back to the profile, also when fn fails.
func (o *rootOptions) withSession(ctx context.Context, fn func(ctx context.Context, s *Session, p *Profile, log *slog.Logger) error) error {
	p, err := LoadProfile(o.profilePath, o.environ)
	if err != nil {
		return err
	}
	if o.url != "" {
		p.URL = o.url
	}
	if o.logLevel != "" {
		p.LogLevel = o.logLevel
	}

	log := logger.NewWithFormat("storefrontctl", p.LogLevel, logger.FormatText, o.streams.Err)

	s, err := NewSession(p, log)
	if err != nil {
		return err
	}
	defer s.Close()

	runErr := fn(ctx, s, p, log)

	if s.Sync() {
		if err := p.Save(o.profilePath); err != nil {
			log.Warn("profile not saved", slog.String("error", err.Error()))
		}
	}
	return runErr
}

// cartAction loads the cart, applies action and prints the result.
func (o *rootOptions) cartAction(cmd *cobra.Command, action func(ctx context.Context, c *syncer.Cart) error) error {
	return o.withSession(cmd.Context(), func(ctx context.Context, s *Session, _ *Profile, _ *slog.Logger) error {
		err := s.Cart.Start(ctx)
		if err == nil && action != nil {
			err = action(ctx, s.Cart)
		}
		RenderCart(o.streams.Out, s.Cart.Snapshot())
		return err
	})
}

func (o *rootOptions) wishlistAction(cmd *cobra.Command, action func(ctx context.Context, w *syncer.Wishlist) error) error {
	return o.withSession(cmd.Context(), func(ctx context.Context, s *Session, _ *Profile, _ *slog.Logger) error {
		err := s.Wishlist.Start(ctx)
		if err == nil && action != nil {
			err = action(ctx, s.Wishlist)
		}
		RenderWishlist(o.streams.Out, s.Wishlist.Snapshot())
		return err
	})
}

func newCartCommand(o *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cart",
		Short: "Show or change the cart",
	}

	list := &cobra.Command{
		Use:   "list",
		Short: "Show the cart",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return o.cartAction(cmd, nil)
		},
	}

	var quantity int
	add := &cobra.Command{
		Use:   "add PRODUCT_ID",
		Short: "Add a product to the cart",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseProductID(args[0])
			if err != nil {
				return err
			}
			return o.cartAction(cmd, func(ctx context.Context, c *syncer.Cart) error {
				return c.AddQuantity(ctx, id, quantity)
			})
		},
	}
	add.Flags().IntVarP(&quantity, "quantity", "q", 1, "units to add")

	set := &cobra.Command{
		Use:   "set PRODUCT_ID QUANTITY",
		Short: "Set the quantity of a cart line (0 removes it)",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseProductID(args[0])
			if err != nil {
				return err
			}
			qty, err := strconv.Atoi(args[1])
			if err != nil {
				return fmt.Errorf("invalid quantity %q", args[1])
			}
			return o.cartAction(cmd, func(ctx context.Context, c *syncer.Cart) error {
				return c.SetQuantity(ctx, id, qty)
			})
		},
	}

	remove := &cobra.Command{
		Use:   "remove PRODUCT_ID",
		Short: "Remove a product from the cart",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseProductID(args[0])
			if err != nil {
				return err
			}
			return o.cartAction(cmd, func(ctx context.Context, c *syncer.Cart) error {
				return c.Remove(ctx, id)
			})
		},
	}

	clearCmd := &cobra.Command{
		Use:   "clear",
		Short: "Empty the cart",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return o.cartAction(cmd, func(ctx context.Context, c *syncer.Cart) error {
				return c.Clear(ctx)
			})
		},
	}

	cmd.AddCommand(list, add, set, remove, clearCmd)
	return cmd
}

func newWishlistCommand(o *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "wishlist",
		Short: "Show or change the wishlist",
	}

	list := &cobra.Command{
		Use:   "list",
		Short: "Show the wishlist",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return o.wishlistAction(cmd, nil)
		},
	}

	toggle := &cobra.Command{
		Use:   "toggle PRODUCT_ID",
		Short: "Add a product to the wishlist, or remove it when present",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseProductID(args[0])
			if err != nil {
				return err
			}
			return o.wishlistAction(cmd, func(ctx context.Context, w *syncer.Wishlist) error {
				return w.Toggle(ctx, id)
			})
		},
	}

	remove := &cobra.Command{
		Use:   "remove PRODUCT_ID",
		Short: "Remove a product from the wishlist",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseProductID(args[0])
			if err != nil {
				return err
			}
			return o.wishlistAction(cmd, func(ctx context.Context, w *syncer.Wishlist) error {
				return w.Remove(ctx, id)
			})
		},
	}

	cmd.AddCommand(list, toggle, remove)
	return cmd
}

func newProductsCommand(o *rootOptions) *cobra.Command {
	var (
		featured bool
		page     int
		limit    int
	)
	cmd := &cobra.Command{
		Use:   "products",
		Short: "List catalog products",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			q := remote.ProductQuery{Page: page, Limit: limit}
			if cmd.Flags().Changed("featured") {
				q.Featured = &featured
			}
			return o.withSession(cmd.Context(), func(ctx context.Context, s *Session, _ *Profile, _ *slog.Logger) error {
				result, err := s.API.Products(ctx, q)
				if err != nil {
					return err
				}
				RenderProducts(o.streams.Out, result)
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&featured, "featured", false, "only featured products")
	cmd.Flags().IntVar(&page, "page", 0, "page number")
	cmd.Flags().IntVar(&limit, "limit", 0, "products per page")
	return cmd
}

func newLoginCommand(o *rootOptions) *cobra.Command {
	var (
		email    string
		remember bool
	)
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in to the dashboard",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			password, err := readPassword(o.streams.In, o.streams.Err)
			if err != nil {
				return err
			}
			return o.withSession(cmd.Context(), func(ctx context.Context, s *Session, _ *Profile, _ *slog.Logger) error {
				if err := s.API.Login(ctx, email, password, remember); err != nil {
					return err
				}
				fmt.Fprintf(o.streams.Out, "Signed in as %s\n", email)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "account email")
	cmd.Flags().BoolVar(&remember, "remember", false, "keep the session for 7 days")
	_ = cmd.MarkFlagRequired("email")
	return cmd
}

func newWatchCommand(o *rootOptions) *cobra.Command {
	var brokers []string
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Print the cart whenever it changes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return o.withSession(cmd.Context(), func(ctx context.Context, s *Session, p *Profile, log *slog.Logger) error {
				interval, err := p.WatchIntervalDuration()
				if err != nil {
					return err
				}
				if cmd.Flags().Changed("interval") {
					interval, err = cmd.Flags().GetDuration("interval")
					if err != nil {
						return err
					}
				}
				if !cmd.Flags().Changed("kafka") {
					brokers = p.KafkaBrokers
				}

				if err := s.Cart.Start(ctx); err != nil {
					RenderCart(o.streams.Out, s.Cart.Snapshot())
					return err
				}
				return Watch(ctx, s, o.streams.Out, WatchOptions{Interval: interval, Brokers: brokers}, log)
			})
		},
	}
	cmd.Flags().Duration("interval", 0, "poll interval (defaults to the profile)")
	cmd.Flags().StringSliceVar(&brokers, "kafka", nil, "Kafka brokers for push updates")
	return cmd
}

func parseProductID(s string) (int, error) {
	id, err := strconv.Atoi(s)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid product id %q", s)
	}
	return id, nil
}
