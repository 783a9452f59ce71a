/*
Package archive builds and trims the zip archives an action hands off.

	+-----------+      +-----------+      +------------+
	|  Items    | ---> |  Build    | ---> |  Filter    | ---> archive.zip
	| (dropped) |      | (zip)     |      | (exclude)  |
	+-----------+      +-----------+      +------------+

🎯 Purpose:
- Turn an ordered list of dropped paths and text clippings into one .zip
- Strip metadata entries (__MACOSX, .DS_Store, ...) from an existing archive

🔄 Flow:
1. Items are resolved concurrently (stat + directory walk), order is kept
2. Entry names are assigned, clashing roots get Finder style " 2" suffixes
3. Entries are written sequentially, progress is reported per entry
4. Filter rewrites the archive beside itself, copying kept entries raw

⚡ Guarantees:
- Only regular files become entries, directories are implied by names
- Entries kept by Filter are byte-identical to the originals
- Filter with no matches never touches the file

🔍 Example:

	res, err := archive.Build(ctx, archive.Request{
		Items: archive.Paths("a.txt", "b.txt"),
		Name:  "bundle",
	}, archive.WithWorkDir(dir))
	removed, err := archive.Filter(ctx, res.Path, archive.DefaultExcludes)
*/
package archive
