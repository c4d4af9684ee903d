/*
   XSysLoader - game asset installer for the xsystem35 runtime
   Copyright (c) 2021, Alexander Vollschwitz

   This file is part of XSysLoader.

   XSysLoader is free software: you can redistribute it and/or modify
   it under the terms of the GNU General Public License as published by
   the Free Software Foundation, either version 3 of the License, or
   (at your option) any later version.

   XSysLoader is distributed in the hope that it will be useful,
   but WITHOUT ANY WARRANTY; without even the implied warranty of
   MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
   GNU General Public License for more details.

   You should have received a copy of the GNU General Public License
   along with XSysLoader. If not, see <http://www.gnu.org/licenses/>.
*/

package repo

import (
	"fmt"
	"path/filepath"
	"strings"

	log "github.com/sirupsen/logrus"

	"github.com/xelalexv/xsysloader/pkg/loader"
)

//
const PrefixRepoRef = "repo://"

// Resolve resolves reference ref to a file inside the game repository
// directory repo.
func Resolve(ref, repo string) (loader.InputFile, error) {

	log.WithFields(log.Fields{
		"reference":  ref,
		"repository": repo,
	}).Debug("resolving ref")

	if !IsReference(ref) {
		return nil, fmt.Errorf("unsupported reference: %s", ref)
	}

	if repo == "" {
		return nil, fmt.Errorf("game repository is not enabled")
	}

	rel := filepath.FromSlash(ref[len(PrefixRepoRef):])
	if !filepath.IsLocal(rel) {
		return nil, fmt.Errorf("reference outside of repository: %s", ref)
	}

	return loader.NewDiskFile(filepath.Join(repo, rel))
}

// ResolveAll resolves all refs, failing on the first reference that cannot
// be resolved.
func ResolveAll(refs []string, repo string) ([]loader.InputFile, error) {
	var ret []loader.InputFile
	for _, r := range refs {
		f, err := Resolve(r, repo)
		if err != nil {
			return nil, err
		}
		ret = append(ret, f)
	}
	return ret, nil
}

//
func IsReference(r string) bool {
	return strings.HasPrefix(r, PrefixRepoRef)
}
