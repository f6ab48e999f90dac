// Package receive reads the local identity's inbox and decrypts the files
// it points to.
package receive
