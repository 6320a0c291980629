// Copyright (c) 2018-2026 Splunk Inc. All rights reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
// 	http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/splunk/jobflow/pkg/objectstore"
)

func newObjectsCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "objects",
		Short: "Manage objects addressed as bucket/key",
	}
	cmd.AddCommand(newUploadCmd(a))
	cmd.AddCommand(newDownloadCmd(a))
	cmd.AddCommand(newDeleteCmd(a))
	cmd.AddCommand(newListCmd(a))
	cmd.AddCommand(newCopyCmd(a))
	return cmd
}

// withStore opens the configured store for the duration of fn.
func (a *app) withStore(ctx context.Context, fn func(*objectstore.Client) error) error {
	store, err := a.openStore(ctx)
	if err != nil {
		return err
	}
	defer store.Close()
	return fn(store)
}

func newUploadCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "upload <bucket/key> <local-file>",
		Short: "Upload a local file",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withStore(cmd.Context(), func(store *objectstore.Client) error {
				return store.Upload(cmd.Context(), args[0], args[1])
			})
		},
	}
}

func newDownloadCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "download <bucket/key> <local-file>",
		Short: "Download an object to a local file",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withStore(cmd.Context(), func(store *objectstore.Client) error {
				return store.Download(cmd.Context(), args[0], args[1])
			})
		},
	}
}

func newDeleteCmd(a *app) *cobra.Command {
	var prefix bool

	cmd := &cobra.Command{
		Use:   "delete <bucket/key>",
		Short: "Delete an object, or every object under a prefix",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withStore(cmd.Context(), func(store *objectstore.Client) error {
				if !prefix {
					return store.Delete(cmd.Context(), args[0])
				}
				deleted, err := store.DeletePrefix(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "deleted %d objects\n", deleted)
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&prefix, "prefix", false, "delete every object under the path")
	return cmd
}

func newListCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "list <bucket/prefix>",
		Short: "List every object path under a prefix",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withStore(cmd.Context(), func(store *objectstore.Client) error {
				for key, err := range store.Keys(cmd.Context(), args[0]) {
					if err != nil {
						return err
					}
					fmt.Fprintln(cmd.OutOrStdout(), key)
				}
				return nil
			})
		},
	}
}

func newCopyCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "copy <src bucket/key> <dst bucket/key>",
		Short: "Copy an object within the store",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withStore(cmd.Context(), func(store *objectstore.Client) error {
				return store.Copy(cmd.Context(), args[0], args[1])
			})
		},
	}
}
