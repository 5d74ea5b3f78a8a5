package groupmanager

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"slices"

	"go.minekube.com/pex/pkg/datastore"
	"go.minekube.com/pex/pkg/util/configtree"
)

// Names of the GroupManager layout.
const (
	configFile       = "config.yml"
	globalGroupsFile = "globalgroups.yml"
	worldsDir        = "worlds"
	usersFile        = "users.yml"
	groupsFile       = "groups.yml"
)

// world is the data of one world directory.
type world struct {
	users  configtree.Node // users.yml "users"
	groups configtree.Node // groups.yml "groups"
}

func (w world) tree(e entity) configtree.Node {
	if e == userEntity {
		return w.users
	}
	return w.groups
}

// index is the immutable in-memory snapshot of a GroupManager directory.
type index struct {
	root         string
	config       configtree.Node // config.yml root
	globalGroups configtree.Node // globalgroups.yml "groups"
	worlds       map[string]world
	worldNames   []string // sorted
	mirrors      *Mirrors
}

// scan loads every document of the GroupManager directory at root.
// Missing documents read as empty, unreadable or malformed ones fail the scan.
func scan(ctx context.Context, root string) (*index, error) {
	fi, err := os.Stat(root)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, datastore.MissingError(root, "does not exist")
		}
		return nil, &datastore.LoadError{Path: root, Err: err}
	}
	if !fi.IsDir() {
		return nil, datastore.MissingError(root, "is not a directory")
	}

	idx := &index{root: root, worlds: map[string]world{}}
	if idx.config, err = load(filepath.Join(root, configFile)); err != nil {
		return nil, err
	}
	global, err := load(filepath.Join(root, globalGroupsFile))
	if err != nil {
		return nil, err
	}
	idx.globalGroups = global.Node("groups")

	worlds := filepath.Join(root, worldsDir)
	entries, err := os.ReadDir(worlds)
	if err != nil {
		return nil, &datastore.LoadError{Path: worlds, Err: err}
	}
	for _, entry := range entries {
		if err = ctx.Err(); err != nil {
			return nil, err
		}
		dir := filepath.Join(worlds, entry.Name())
		if !isDir(dir) {
			continue
		}
		users, err := load(filepath.Join(dir, usersFile))
		if err != nil {
			return nil, err
		}
		groups, err := load(filepath.Join(dir, groupsFile))
		if err != nil {
			return nil, err
		}
		idx.worlds[entry.Name()] = world{
			users:  users.Node("users"),
			groups: groups.Node("groups"),
		}
		idx.worldNames = append(idx.worldNames, entry.Name())
	}
	slices.Sort(idx.worldNames)

	idx.mirrors = parseMirrors(idx.config.Node("settings", "mirrors"))
	return idx, nil
}

func load(path string) (configtree.Node, error) {
	n, err := configtree.Load(path)
	if err != nil {
		return configtree.Node{}, &datastore.LoadError{Path: path, Err: err}
	}
	return n, nil
}

// isDir follows symlinks; broken links are not directories.
func isDir(path string) bool {
	fi, err := os.Stat(path)
	return err == nil && fi.IsDir()
}

// watchPaths returns the documents the index was loaded from and the
// directories whose entries decide which worlds exist.
func (idx *index) watchPaths() []string {
	worlds := filepath.Join(idx.root, worldsDir)
	paths := []string{
		filepath.Join(idx.root, configFile),
		filepath.Join(idx.root, globalGroupsFile),
		worlds,
	}
	for _, w := range idx.worldNames {
		dir := filepath.Join(worlds, w)
		paths = append(paths,
			dir,
			filepath.Join(dir, usersFile),
			filepath.Join(dir, groupsFile),
		)
	}
	return paths
}
