/*
Package sysconfig edits and inspects the sysconfig block of Leo flash images.

# Quick Start

Apply a preboot option document to an image in place:

	res, err := sysconfig.Edit("leo_flash.mem", "preboot.json", nil)

Write the edited image under an auto-generated name instead:

	res, err := sysconfig.Edit("leo_flash.mem", "preboot.json", &sysconfig.OperationOptions{
	    AutoName:     true,
	    CreateBackup: true,
	})
	fmt.Println("wrote", res.OutputPath)

Set registers by name without an option document:

	res, err := sysconfig.Set("leo_flash.mem", []string{"g_ddr_frequency=4800"}, nil)

# Inspection

	rep, err := sysconfig.Dump("leo_flash.mem", &sysconfig.DumpOptions{Short: true})
	_ = rep.WriteText(os.Stdout)

	info, err := sysconfig.Info("leo_flash.mem", nil)
	err = sysconfig.Verify("leo_flash.mem", nil)

# Register Catalog

Every operation that names registers needs the register catalog. By default
it is read from leo_system_config_param_id_pub.json in the image's
directory; OperationOptions.CatalogPath overrides that.

# Errors

Failures carry a *types.Error kind and can be tested with errors.Is against
the sentinels in pkg/types, for example types.ErrBlockNotFound or
types.ErrChecksumMismatch. ErrNothingToDo is returned when an option
document yields no edits.
*/
package sysconfig
