package cmd

import (
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"bazil.org/fuse"
	"bazil.org/fuse/fs"
	"github.com/dendrascience/dendra-archive-diff/browse"
	"github.com/dendrascience/dendra-archive-diff/namespace"
	"github.com/dendrascience/dendra-archive-diff/version"
	"github.com/spf13/cobra"
)

// ErrMountOverlap is returned when the mountpoint lies inside the directory
// being mounted, or contains it.
var ErrMountOverlap = errors.New("mountpoint overlaps the mounted tree")

// NewMountCmd creates and returns the mount subcommand for the jardiff CLI.
// It presents an archive or directory tree as a read-only FUSE filesystem.
func NewMountCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "mount SPEC MOUNTPOINT",
		Short: "Mount an archive or directory tree read-only",
		Long: `Mount SPEC read-only at MOUNTPOINT.

SPEC is resolved the same way the differ resolves its inputs, so an
archive subpath such as "app.jar!/META-INF" mounts only that directory.
Archive entries are decompressed on read; nothing is extracted to disk.
The filesystem is unmounted on interrupt.`,
		Args: cobra.ExactArgs(2),
		RunE: runMount,
	}
}

func runMount(cmd *cobra.Command, args []string) error {
	spec := args[0]
	mountpoint := args[1]

	root, err := namespace.Resolve(spec, namespace.WithLogger(newLogger(cmd)))
	if err != nil {
		return err
	}
	defer root.Close()

	if root.Kind() == namespace.Filesystem && pathsOverlap(root.Location(), mountpoint) {
		return fmt.Errorf("%w: %s and %s", ErrMountOverlap, root.Location(), mountpoint)
	}
	if err := os.MkdirAll(mountpoint, 0o755); err != nil {
		return fmt.Errorf("creating mountpoint: %w", err)
	}

	log.Printf("jardiff %s mounting %s", version.GetFullVersion(), root)

	c, err := fuse.Mount(
		mountpoint,
		fuse.FSName("jardiff"),
		fuse.Subtype("jardiff"),
		fuse.ReadOnly(),
	)
	if err != nil {
		return err
	}
	defer c.Close()

	ctx := cmd.Context()
	go func() {
		<-ctx.Done()
		log.Println("Received interrupt signal, shutting down...")
		if err := fuse.Unmount(mountpoint); err != nil {
			log.Printf("Unmount %s: %v", mountpoint, err)
		}
	}()

	log.Printf("%s mounted at %s", root, mountpoint)
	if err := fs.Serve(c, browse.NewFS(root)); err != nil {
		return err
	}
	log.Println("Shutdown complete")
	return nil
}

// pathsOverlap reports whether either path is the other or lies below it.
func pathsOverlap(path1, path2 string) bool {
	abs1, err1 := filepath.Abs(path1)
	abs2, err2 := filepath.Abs(path2)
	if err1 != nil || err2 != nil {
		return false
	}
	return abs1 == abs2 ||
		strings.HasPrefix(abs1, abs2+string(filepath.Separator)) ||
		strings.HasPrefix(abs2, abs1+string(filepath.Separator))
}
