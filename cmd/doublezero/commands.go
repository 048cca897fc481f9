package main

import (
	"fmt"
	"net/netip"
	"sort"

	"github.com/mr-tron/base58"
	"github.com/urfave/cli"

	"github.com/doublezero/doublezero-contract/pda"
	"github.com/doublezero/doublezero-contract/runtime"
	"github.com/doublezero/doublezero-contract/serviceability/instructions"
	"github.com/doublezero/doublezero-contract/serviceability/state"
)

var authorityKinds = map[string]state.AuthorityKind{
	"activator":     state.AuthorityKindActivator,
	"sentinel":      state.AuthorityKindSentinel,
	"health-oracle": state.AuthorityKindHealthOracle,
	"reservation":   state.AuthorityKindReservation,
}

var resourceKinds = map[string]state.ResourceKind{
	"user_tunnel_block":         state.ResourceKindUserTunnelBlock,
	"device_tunnel_block":       state.ResourceKindDeviceTunnelBlock,
	"multicastgroup_block":      state.ResourceKindMulticastGroupBlock,
	"link_ids":                  state.ResourceKindLinkIds,
	"segment_routing_ids":       state.ResourceKindSegmentRoutingIds,
	"tunnel_ids":                state.ResourceKindTunnelIds,
	"dz_prefix_block":           state.ResourceKindDzPrefixBlock,
	"vrf_ids":                   state.ResourceKindVrfIds,
	"multicast_publisher_block": state.ResourceKindMulticastPublisherBlock,
}

func initCommand() cli.Command {
	return cli.Command{
		Name:  "init",
		Usage: "initialize global state, global config and program config",
		Action: func(c *cli.Context) error {
			s, err := newSession(c)
			if err != nil {
				return err
			}
			fmt.Printf("global state: %s\n", s.gsKey)
			return s.submit(&instructions.InitGlobalState{},
				runtime.SignerMeta(s.signer),
				runtime.WritableMeta(s.gsKey),
				runtime.WritableMeta(s.cfgKey),
				runtime.WritableMeta(s.pcKey))
		},
	}
}

func authorityCommand() cli.Command {
	return cli.Command{
		Name:  "authority",
		Usage: "manage delegated authorities",
		Subcommands: []cli.Command{{
			Name:  "set",
			Usage: "assign an authority key",
			Flags: []cli.Flag{
				cli.StringFlag{Name: "kind", Usage: "activator|sentinel|health-oracle|reservation"},
				cli.StringFlag{Name: "key", Usage: "authority public key (base58)"},
			},
			Action: func(c *cli.Context) error {
				s, err := newSession(c)
				if err != nil {
					return err
				}
				kind, ok := authorityKinds[c.String("kind")]
				if !ok {
					return fmt.Errorf("unknown authority kind %q", c.String("kind"))
				}
				key, err := keyFlag(c, "key")
				if err != nil {
					return err
				}
				return s.submit(&instructions.SetAuthority{Kind: kind, Authority: key},
					runtime.SignerMeta(s.signer),
					runtime.WritableMeta(s.gsKey))
			},
		}},
	}
}

func configCommand() cli.Command {
	return cli.Command{
		Name:  "config",
		Usage: "manage the network-wide configuration",
		Subcommands: []cli.Command{{
			Name:  "set",
			Usage: "write ASNs and tunnel blocks",
			Flags: []cli.Flag{
				cli.UintFlag{Name: "local-asn"},
				cli.UintFlag{Name: "remote-asn"},
				cli.StringFlag{Name: "device-tunnel-block"},
				cli.StringFlag{Name: "user-tunnel-block"},
				cli.StringFlag{Name: "multicast-block"},
			},
			Action: func(c *cli.Context) error {
				s, err := newSession(c)
				if err != nil {
					return err
				}
				devBlock, err := prefixFlag(c, "device-tunnel-block")
				if err != nil {
					return err
				}
				userBlock, err := prefixFlag(c, "user-tunnel-block")
				if err != nil {
					return err
				}
				mcBlock, err := prefixFlag(c, "multicast-block")
				if err != nil {
					return err
				}
				return s.submit(&instructions.SetGlobalConfig{
					LocalASN:            uint32(c.Uint("local-asn")),
					RemoteASN:           uint32(c.Uint("remote-asn")),
					DeviceTunnelBlock:   devBlock,
					UserTunnelBlock:     userBlock,
					MulticastGroupBlock: mcBlock,
				},
					runtime.SignerMeta(s.signer),
					runtime.Meta(s.gsKey),
					runtime.WritableMeta(s.cfgKey))
			},
		}},
	}
}

func allowlistCommand() cli.Command {
	member := cli.StringFlag{Name: "member", Usage: "member public key (base58)"}
	return cli.Command{
		Name:  "allowlist",
		Usage: "manage the foundation allowlist",
		Subcommands: []cli.Command{{
			Name:  "add",
			Flags: []cli.Flag{member},
			Action: func(c *cli.Context) error {
				s, err := newSession(c)
				if err != nil {
					return err
				}
				key, err := keyFlag(c, "member")
				if err != nil {
					return err
				}
				return s.submit(&instructions.AddFoundationAllowlist{Member: key},
					runtime.SignerMeta(s.signer),
					runtime.WritableMeta(s.gsKey))
			},
		}, {
			Name:  "remove",
			Flags: []cli.Flag{member},
			Action: func(c *cli.Context) error {
				s, err := newSession(c)
				if err != nil {
					return err
				}
				key, err := keyFlag(c, "member")
				if err != nil {
					return err
				}
				return s.submit(&instructions.RemoveFoundationAllowlist{Member: key},
					runtime.SignerMeta(s.signer),
					runtime.WritableMeta(s.gsKey))
			},
		}},
	}
}

func locationCommand() cli.Command {
	return cli.Command{
		Name:  "location",
		Usage: "manage locations",
		Subcommands: []cli.Command{{
			Name: "create",
			Flags: []cli.Flag{
				cli.StringFlag{Name: "code"},
				cli.StringFlag{Name: "name"},
				cli.StringFlag{Name: "country"},
				cli.Float64Flag{Name: "lat"},
				cli.Float64Flag{Name: "lng"},
			},
			Action: func(c *cli.Context) error {
				s, err := newSession(c)
				if err != nil {
					return err
				}
				idx, err := s.nextIndex()
				if err != nil {
					return err
				}
				key, bump, err := pda.DeriveLocationPDA(s.programID, idx)
				if err != nil {
					return err
				}
				fmt.Printf("location: %s\n", key)
				return s.submit(&instructions.CreateLocation{
					Index:    idx,
					BumpSeed: bump,
					Code:     c.String("code"),
					Name:     c.String("name"),
					Country:  c.String("country"),
					Lat:      c.Float64("lat"),
					Lng:      c.Float64("lng"),
				},
					runtime.SignerMeta(s.signer),
					runtime.WritableMeta(s.gsKey),
					runtime.WritableMeta(key))
			},
		}},
	}
}

func exchangeCommand() cli.Command {
	return cli.Command{
		Name:  "exchange",
		Usage: "manage exchanges",
		Subcommands: []cli.Command{{
			Name: "create",
			Flags: []cli.Flag{
				cli.StringFlag{Name: "code"},
				cli.StringFlag{Name: "name"},
				cli.Float64Flag{Name: "lat"},
				cli.Float64Flag{Name: "lng"},
			},
			Action: func(c *cli.Context) error {
				s, err := newSession(c)
				if err != nil {
					return err
				}
				idx, err := s.nextIndex()
				if err != nil {
					return err
				}
				key, bump, err := pda.DeriveExchangePDA(s.programID, idx)
				if err != nil {
					return err
				}
				fmt.Printf("exchange: %s\n", key)
				return s.submit(&instructions.CreateExchange{
					Index:    idx,
					BumpSeed: bump,
					Code:     c.String("code"),
					Name:     c.String("name"),
					Lat:      c.Float64("lat"),
					Lng:      c.Float64("lng"),
				},
					runtime.SignerMeta(s.signer),
					runtime.WritableMeta(s.gsKey),
					runtime.WritableMeta(key),
					runtime.WritableMeta(s.cfgKey))
			},
		}},
	}
}

func contributorCommand() cli.Command {
	return cli.Command{
		Name:  "contributor",
		Usage: "manage contributors",
		Subcommands: []cli.Command{{
			Name: "create",
			Flags: []cli.Flag{
				cli.StringFlag{Name: "code"},
				cli.StringFlag{Name: "ops-manager", Usage: "operations manager key (base58)"},
			},
			Action: func(c *cli.Context) error {
				s, err := newSession(c)
				if err != nil {
					return err
				}
				idx, err := s.nextIndex()
				if err != nil {
					return err
				}
				key, bump, err := pda.DeriveContributorPDA(s.programID, idx)
				if err != nil {
					return err
				}
				ops, err := keyFlag(c, "ops-manager")
				if err != nil {
					return err
				}
				fmt.Printf("contributor: %s\n", key)
				return s.submit(&instructions.CreateContributor{
					Index:      idx,
					BumpSeed:   bump,
					Code:       c.String("code"),
					OpsManager: ops,
				},
					runtime.SignerMeta(s.signer),
					runtime.WritableMeta(s.gsKey),
					runtime.WritableMeta(key))
			},
		}},
	}
}

func deviceCommand() cli.Command {
	return cli.Command{
		Name:  "device",
		Usage: "manage devices",
		Subcommands: []cli.Command{{
			Name: "create",
			Flags: []cli.Flag{
				cli.StringFlag{Name: "code"},
				cli.StringFlag{Name: "public-ip"},
				cli.StringFlag{Name: "contributor"},
				cli.StringFlag{Name: "location"},
				cli.StringFlag{Name: "exchange"},
				cli.StringSliceFlag{Name: "dz-prefix"},
				cli.StringFlag{Name: "mgmt-vrf", Value: "default"},
				cli.StringFlag{Name: "metrics-publisher"},
				cli.UintFlag{Name: "max-users", Value: 255},
			},
			Action: func(c *cli.Context) error {
				s, err := newSession(c)
				if err != nil {
					return err
				}
				idx, err := s.nextIndex()
				if err != nil {
					return err
				}
				key, bump, err := pda.DeriveDevicePDA(s.programID, idx)
				if err != nil {
					return err
				}
				publicIP, err := addrFlag(c, "public-ip")
				if err != nil {
					return err
				}
				con, err := keyFlag(c, "contributor")
				if err != nil {
					return err
				}
				loc, err := keyFlag(c, "location")
				if err != nil {
					return err
				}
				ex, err := keyFlag(c, "exchange")
				if err != nil {
					return err
				}
				publisher, err := keyFlag(c, "metrics-publisher")
				if err != nil {
					return err
				}
				ins := &instructions.CreateDevice{
					Index:            idx,
					BumpSeed:         bump,
					Code:             c.String("code"),
					DeviceType:       state.DeviceTypeSwitch,
					PublicIP:         publicIP,
					MgmtVrf:          c.String("mgmt-vrf"),
					MetricsPublisher: publisher,
					MaxUsers:         uint16(c.Uint("max-users")),
				}
				for _, raw := range c.StringSlice("dz-prefix") {
					p, err := netip.ParsePrefix(raw)
					if err != nil {
						return fmt.Errorf("--dz-prefix: %w", err)
					}
					ins.DzPrefixes = append(ins.DzPrefixes, p)
				}
				fmt.Printf("device: %s\n", key)
				return s.submit(ins,
					runtime.SignerMeta(s.signer),
					runtime.WritableMeta(s.gsKey),
					runtime.WritableMeta(key),
					runtime.WritableMeta(con),
					runtime.WritableMeta(loc),
					runtime.WritableMeta(ex))
			},
		}, {
			Name:  "activate",
			Flags: []cli.Flag{cli.StringFlag{Name: "device"}},
			Action: func(c *cli.Context) error {
				s, err := newSession(c)
				if err != nil {
					return err
				}
				dev, err := keyFlag(c, "device")
				if err != nil {
					return err
				}
				return s.submit(&instructions.ActivateDevice{},
					runtime.SignerMeta(s.signer),
					runtime.Meta(s.gsKey),
					runtime.WritableMeta(dev))
			},
		}, {
			Name: "create-interface",
			Flags: []cli.Flag{
				cli.StringFlag{Name: "device"},
				cli.StringFlag{Name: "contributor"},
				cli.StringFlag{Name: "name"},
				cli.Uint64Flag{Name: "bandwidth"},
				cli.UintFlag{Name: "mtu", Value: 9100},
			},
			Action: func(c *cli.Context) error {
				s, err := newSession(c)
				if err != nil {
					return err
				}
				dev, err := keyFlag(c, "device")
				if err != nil {
					return err
				}
				con, err := keyFlag(c, "contributor")
				if err != nil {
					return err
				}
				return s.submit(&instructions.CreateDeviceInterface{
					Name:          c.String("name"),
					InterfaceType: state.InterfaceTypePhysical,
					Bandwidth:     c.Uint64("bandwidth"),
					MTU:           uint16(c.Uint("mtu")),
					RoutingMode:   state.RoutingModeBGP,
				},
					runtime.SignerMeta(s.signer),
					runtime.Meta(s.gsKey),
					runtime.WritableMeta(dev),
					runtime.Meta(con))
			},
		}},
	}
}

func linkCommand() cli.Command {
	return cli.Command{
		Name:  "link",
		Usage: "manage links",
		Subcommands: []cli.Command{{
			Name: "create",
			Flags: []cli.Flag{
				cli.StringFlag{Name: "code"},
				cli.StringFlag{Name: "contributor"},
				cli.StringFlag{Name: "side-a"},
				cli.StringFlag{Name: "side-z"},
				cli.StringFlag{Name: "side-a-iface"},
				cli.Uint64Flag{Name: "bandwidth"},
				cli.UintFlag{Name: "mtu", Value: 9100},
				cli.Uint64Flag{Name: "delay-ns"},
				cli.Uint64Flag{Name: "jitter-ns"},
			},
			Action: func(c *cli.Context) error {
				s, err := newSession(c)
				if err != nil {
					return err
				}
				idx, err := s.nextIndex()
				if err != nil {
					return err
				}
				key, bump, err := pda.DeriveLinkPDA(s.programID, idx)
				if err != nil {
					return err
				}
				con, err := keyFlag(c, "contributor")
				if err != nil {
					return err
				}
				sideA, err := keyFlag(c, "side-a")
				if err != nil {
					return err
				}
				sideZ, err := keyFlag(c, "side-z")
				if err != nil {
					return err
				}
				fmt.Printf("link: %s\n", key)
				return s.submit(&instructions.CreateLink{
					Index:          idx,
					BumpSeed:       bump,
					Code:           c.String("code"),
					LinkType:       state.LinkTypeWAN,
					Bandwidth:      c.Uint64("bandwidth"),
					MTU:            uint16(c.Uint("mtu")),
					DelayNs:        c.Uint64("delay-ns"),
					JitterNs:       c.Uint64("jitter-ns"),
					SideAIfaceName: c.String("side-a-iface"),
				},
					runtime.SignerMeta(s.signer),
					runtime.WritableMeta(s.gsKey),
					runtime.WritableMeta(key),
					runtime.WritableMeta(con),
					runtime.WritableMeta(sideA),
					runtime.WritableMeta(sideZ))
			},
		}, {
			Name: "accept",
			Flags: []cli.Flag{
				cli.StringFlag{Name: "link"},
				cli.StringFlag{Name: "side-z"},
				cli.StringFlag{Name: "contributor"},
				cli.StringFlag{Name: "side-z-iface"},
			},
			Action: func(c *cli.Context) error {
				s, err := newSession(c)
				if err != nil {
					return err
				}
				link, err := keyFlag(c, "link")
				if err != nil {
					return err
				}
				sideZ, err := keyFlag(c, "side-z")
				if err != nil {
					return err
				}
				con, err := keyFlag(c, "contributor")
				if err != nil {
					return err
				}
				return s.submit(&instructions.AcceptLink{SideZIfaceName: c.String("side-z-iface")},
					runtime.SignerMeta(s.signer),
					runtime.Meta(s.gsKey),
					runtime.WritableMeta(link),
					runtime.Meta(sideZ),
					runtime.Meta(con))
			},
		}, {
			Name: "activate",
			Flags: []cli.Flag{
				cli.StringFlag{Name: "link"},
				cli.StringFlag{Name: "link-ids-ext", Usage: "link id pool account"},
				cli.StringFlag{Name: "tunnel-ext", Usage: "device tunnel block pool account"},
			},
			Action: func(c *cli.Context) error {
				s, err := newSession(c)
				if err != nil {
					return err
				}
				link, err := keyFlag(c, "link")
				if err != nil {
					return err
				}
				ids, err := keyFlag(c, "link-ids-ext")
				if err != nil {
					return err
				}
				tunnels, err := keyFlag(c, "tunnel-ext")
				if err != nil {
					return err
				}
				return s.submit(&instructions.ActivateLink{UseOnchainAllocation: true},
					runtime.SignerMeta(s.signer),
					runtime.Meta(s.gsKey),
					runtime.WritableMeta(link),
					runtime.WritableMeta(ids),
					runtime.WritableMeta(tunnels))
			},
		}},
	}
}

func resourceCommand() cli.Command {
	kindFlag := cli.StringFlag{Name: "kind", Usage: "resource kind (e.g. link_ids, dz_prefix_block)"}
	return cli.Command{
		Name:  "resource",
		Usage: "manage resource pools",
		Subcommands: []cli.Command{{
			Name: "init",
			Flags: []cli.Flag{
				kindFlag,
				cli.StringFlag{Name: "device", Usage: "associated device for per-device kinds"},
				cli.UintFlag{Name: "ordinal"},
				cli.UintFlag{Name: "range-start"},
				cli.UintFlag{Name: "range-end"},
				cli.StringFlag{Name: "base-net"},
			},
			Action: func(c *cli.Context) error {
				s, err := newSession(c)
				if err != nil {
					return err
				}
				kind, ok := resourceKinds[c.String("kind")]
				if !ok {
					return fmt.Errorf("unknown resource kind %q", c.String("kind"))
				}
				ins := &instructions.InitResourceExtension{
					Kind:       kind,
					Ordinal:    uint8(c.Uint("ordinal")),
					RangeStart: uint16(c.Uint("range-start")),
					RangeEnd:   uint16(c.Uint("range-end")),
				}
				if raw := c.String("base-net"); raw != "" {
					if ins.BaseNet, err = netip.ParsePrefix(raw); err != nil {
						return fmt.Errorf("--base-net: %w", err)
					}
				}
				var aux [][]byte
				metas := []runtime.AccountMeta{runtime.SignerMeta(s.signer), runtime.Meta(s.gsKey)}
				var extra []runtime.AccountMeta
				if !kind.Global() {
					dev, err := keyFlag(c, "device")
					if err != nil {
						return err
					}
					aux = [][]byte{dev.Bytes(), {ins.Ordinal}}
					extra = append(extra, runtime.Meta(dev))
				} else if kind.Allocator() == state.AllocatorTypeIp {
					extra = append(extra, runtime.Meta(s.cfgKey))
				}
				key, bump, err := pda.DeriveResourceExtensionPDA(s.programID, uint8(kind), aux...)
				if err != nil {
					return err
				}
				ins.BumpSeed = bump
				fmt.Printf("extension: %s\n", key)
				metas = append(metas, runtime.WritableMeta(key))
				metas = append(metas, extra...)
				return s.submit(ins, metas...)
			},
		}, {
			Name:  "allocate",
			Flags: append(repairFlags(), kindFlag),
			Action: func(c *cli.Context) error {
				return repairAction(c, func(kind state.ResourceKind, value instructions.ResourceValue) instructions.Instruction {
					return &instructions.AllocateResource{Kind: kind, Value: value}
				})
			},
		}, {
			Name:  "deallocate",
			Flags: append(repairFlags(), kindFlag),
			Action: func(c *cli.Context) error {
				return repairAction(c, func(kind state.ResourceKind, value instructions.ResourceValue) instructions.Instruction {
					return &instructions.DeallocateResource{Kind: kind, Value: value}
				})
			},
		}},
	}
}

func repairFlags() []cli.Flag {
	return []cli.Flag{
		cli.StringFlag{Name: "extension", Usage: "pool account (base58)"},
		cli.UintFlag{Name: "id"},
		cli.StringFlag{Name: "ip"},
		cli.StringFlag{Name: "block"},
	}
}

func repairAction(c *cli.Context, build func(state.ResourceKind, instructions.ResourceValue) instructions.Instruction) error {
	s, err := newSession(c)
	if err != nil {
		return err
	}
	kind, ok := resourceKinds[c.String("kind")]
	if !ok {
		return fmt.Errorf("unknown resource kind %q", c.String("kind"))
	}
	ext, err := keyFlag(c, "extension")
	if err != nil {
		return err
	}
	var value instructions.ResourceValue
	switch {
	case c.IsSet("id"):
		value = instructions.ResourceValue{Kind: instructions.ResourceValueId, Id: uint16(c.Uint("id"))}
	case c.IsSet("ip"):
		addr, err := addrFlag(c, "ip")
		if err != nil {
			return err
		}
		value = instructions.ResourceValue{Kind: instructions.ResourceValueIp, Ip: addr}
	case c.IsSet("block"):
		block, err := prefixFlag(c, "block")
		if err != nil {
			return err
		}
		value = instructions.ResourceValue{Kind: instructions.ResourceValueIpBlock, Block: block}
	default:
		return fmt.Errorf("one of --id, --ip, --block is required")
	}
	return s.submit(build(kind, value),
		runtime.SignerMeta(s.signer),
		runtime.Meta(s.gsKey),
		runtime.WritableMeta(ext))
}

func accessPassCommand() cli.Command {
	return cli.Command{
		Name:  "access-pass",
		Usage: "manage access passes",
		Subcommands: []cli.Command{{
			Name: "set",
			Flags: []cli.Flag{
				cli.StringFlag{Name: "client-ip"},
				cli.StringFlag{Name: "payer"},
				cli.UintFlag{Name: "flags"},
			},
			Action: func(c *cli.Context) error {
				s, err := newSession(c)
				if err != nil {
					return err
				}
				clientIP, err := addrFlag(c, "client-ip")
				if err != nil {
					return err
				}
				payer, err := keyFlag(c, "payer")
				if err != nil {
					return err
				}
				key, bump, err := pda.DeriveAccessPassPDA(s.programID, clientIP, payer)
				if err != nil {
					return err
				}
				fmt.Printf("access pass: %s\n", key)
				return s.submit(&instructions.CreateAccessPass{
					PassType: state.AccessPassType{Kind: state.AccessPassKindPrepaid},
					ClientIP: clientIP,
					BumpSeed: bump,
					Flags:    uint8(c.Uint("flags")),
				},
					runtime.SignerMeta(s.signer),
					runtime.Meta(s.gsKey),
					runtime.WritableMeta(key),
					runtime.Meta(payer))
			},
		}},
	}
}

func userCommand() cli.Command {
	return cli.Command{
		Name:  "user",
		Usage: "manage users",
		Subcommands: []cli.Command{{
			Name: "create",
			Flags: []cli.Flag{
				cli.StringFlag{Name: "device"},
				cli.StringFlag{Name: "client-ip"},
			},
			Action: func(c *cli.Context) error {
				s, err := newSession(c)
				if err != nil {
					return err
				}
				dev, err := keyFlag(c, "device")
				if err != nil {
					return err
				}
				clientIP, err := addrFlag(c, "client-ip")
				if err != nil {
					return err
				}
				userKey, bump, err := pda.DeriveUserPDA(s.programID, clientIP, uint8(state.UserTypeIBRL))
				if err != nil {
					return err
				}
				passKey, _, err := pda.DeriveAccessPassPDA(s.programID, clientIP, s.signer)
				if err != nil {
					return err
				}
				fmt.Printf("user: %s\n", userKey)
				return s.submit(&instructions.CreateUser{
					UserType: state.UserTypeIBRL,
					CyoaType: state.UserCYOAGREOverDIA,
					ClientIP: clientIP,
					BumpSeed: bump,
				},
					runtime.SignerMeta(s.signer),
					runtime.Meta(s.gsKey),
					runtime.WritableMeta(userKey),
					runtime.WritableMeta(dev),
					runtime.WritableMeta(passKey))
			},
		}, {
			Name: "activate",
			Flags: []cli.Flag{
				cli.StringFlag{Name: "user"},
				cli.StringFlag{Name: "tunnel-ids-ext", Usage: "per-device tunnel id pool account"},
				cli.StringFlag{Name: "tunnel-ext", Usage: "user tunnel block pool account"},
			},
			Action: func(c *cli.Context) error {
				s, err := newSession(c)
				if err != nil {
					return err
				}
				user, err := keyFlag(c, "user")
				if err != nil {
					return err
				}
				ids, err := keyFlag(c, "tunnel-ids-ext")
				if err != nil {
					return err
				}
				tunnels, err := keyFlag(c, "tunnel-ext")
				if err != nil {
					return err
				}
				return s.submit(&instructions.ActivateUser{UseOnchainAllocation: true},
					runtime.SignerMeta(s.signer),
					runtime.Meta(s.gsKey),
					runtime.WritableMeta(user),
					runtime.WritableMeta(ids),
					runtime.WritableMeta(tunnels))
			},
		}},
	}
}

func accountsCommand() cli.Command {
	return cli.Command{
		Name:  "accounts",
		Usage: "list every program account in the ledger",
		Action: func(c *cli.Context) error {
			s, err := newSession(c)
			if err != nil {
				return err
			}
			accounts := s.em.Accounts(s.programID)
			keys := make([]string, 0, len(accounts))
			byKey := make(map[string][]byte, len(accounts))
			for key, data := range accounts {
				encoded := base58.Encode(key[:])
				keys = append(keys, encoded)
				byKey[encoded] = data
			}
			sort.Strings(keys)
			for _, key := range keys {
				typ, err := state.AccountTypeOf(byKey[key])
				if err != nil {
					return err
				}
				fmt.Printf("%-20s %s (%d bytes)\n", typ, key, len(byKey[key]))
			}
			return nil
		},
	}
}
